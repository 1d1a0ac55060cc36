package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdemo/datagen/generator"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	os.Exit(m.Run())
}

func sampleDataset(t *testing.T) *generator.Dataset {
	t.Helper()
	ds, err := generator.Generate(generator.Options{
		Days:                5,
		Users:               40,
		AvgSessionsPerUser:  3,
		AvgEventsPerSession: 7,
		Seed:                99,
		End:                 time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, ds.Orders)
	return ds
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	ds := sampleDataset(t)
	dir := filepath.Join(t.TempDir(), "data")

	require.NoError(t, WriteCSV(dir, ds.Events, ds.Orders))

	events, err := ReadEventsCSV(filepath.Join(dir, EventsCSV))
	require.NoError(t, err)
	assert.Equal(t, ds.Events, events)

	orders, err := ReadOrdersCSV(filepath.Join(dir, OrdersCSV))
	require.NoError(t, err)
	assert.Equal(t, ds.Orders, orders)
}

func TestWriteCSV_Format(t *testing.T) {
	ds := sampleDataset(t)
	dir := t.TempDir()
	require.NoError(t, WriteCSV(dir, ds.Events, ds.Orders))

	raw, err := os.ReadFile(filepath.Join(dir, OrdersCSV))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	assert.Equal(t, strings.Join(OrderColumns, ","), lines[0])
	assert.Len(t, lines, len(ds.Orders)+1)

	first := strings.Split(lines[1], ",")
	assert.Equal(t, "o_0000001", first[0])
	assert.True(t, strings.HasSuffix(first[1], "+00:00"), first[1])
	assert.Len(t, first[2], len("2006-01-02"))
	assert.Equal(t, "USD", first[10])
}

func TestWriteCSV_ByteIdenticalForSameSeed(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a, b := sampleDataset(t), sampleDataset(t)
	require.NoError(t, WriteCSV(dirA, a.Events, a.Orders))
	require.NoError(t, WriteCSV(dirB, b.Events, b.Orders))

	for _, name := range []string{EventsCSV, OrdersCSV} {
		rawA, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		rawB, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, rawA, rawB, name)
	}
}

func TestReadEventsCSV_RejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), EventsCSV)
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d,e,f,g,h,i,j,k\n"), 0o644))

	_, err := ReadEventsCSV(path)
	assert.ErrorContains(t, err, "unexpected header")
}

func TestWrite_WithParquet(t *testing.T) {
	ds := sampleDataset(t)
	dir := t.TempDir()

	res, err := Write(dir, ds, true)
	require.NoError(t, err)
	assert.True(t, res.Parquet)
	assert.NoError(t, res.SkipCause)
	assert.Equal(t, len(ds.Events), res.Events)
	assert.Equal(t, len(ds.Orders), res.Orders)

	assert.FileExists(t, filepath.Join(dir, EventsParquet))
	assert.FileExists(t, filepath.Join(dir, OrdersParquet))

	events, err := ReadEventsParquet(filepath.Join(dir, EventsParquet))
	require.NoError(t, err)
	assert.Equal(t, ds.Events, events)

	orders, err := ReadOrdersParquet(filepath.Join(dir, OrdersParquet))
	require.NoError(t, err)
	assert.Equal(t, ds.Orders, orders)
}

func TestWriteParquet_EmptyOrders(t *testing.T) {
	ds := sampleDataset(t)
	dir := t.TempDir()

	require.NoError(t, WriteParquet(dir, ds.Events, nil))

	orders, err := ReadOrdersParquet(filepath.Join(dir, OrdersParquet))
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWrite_ParquetFailureIsSkipped(t *testing.T) {
	ds := sampleDataset(t)
	dir := t.TempDir()
	// A directory where the orders file should go makes the second parquet write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, OrdersParquet), 0o755))

	res, err := Write(dir, ds, true)
	require.NoError(t, err)
	assert.False(t, res.Parquet)
	assert.Error(t, res.SkipCause)

	assert.FileExists(t, filepath.Join(dir, EventsCSV))
	assert.FileExists(t, filepath.Join(dir, OrdersCSV))
	assert.NoFileExists(t, filepath.Join(dir, EventsParquet))
}

func TestWrite_WithoutParquet(t *testing.T) {
	ds := sampleDataset(t)
	dir := t.TempDir()

	res, err := Write(dir, ds, false)
	require.NoError(t, err)
	assert.False(t, res.Parquet)
	assert.NoFileExists(t, filepath.Join(dir, EventsParquet))
	assert.Equal(t, filepath.Join(dir, EventsCSV), res.EventsCSVPath())
}
