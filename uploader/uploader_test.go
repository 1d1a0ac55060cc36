package uploader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	os.Exit(m.Run())
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) UploadFile(ctx context.Context, localPath, bucket, key string) error {
	args := m.Called(localPath, bucket, key)
	return args.Error(0)
}

func (m *MockStore) Scheme() string { return "s3" }

func (m *MockStore) Close() error { return nil }

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestUploadDir_MissingOrdersMakesNoCalls(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "events.csv", "events.parquet", "orders.parquet")

	store := new(MockStore)
	var out bytes.Buffer
	err := UploadDir(context.Background(), store, dir, "bucket", DefaultPrefix, &out)

	var missing *MissingFilesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"orders.csv"}, missing.Missing)
	assert.Contains(t, err.Error(), "orders.csv")
	store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, out.String())
}

func TestPlan_ReportsEveryMissingFile(t *testing.T) {
	_, err := Plan(t.TempDir(), DefaultPrefix)

	var missing *MissingFilesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"events.csv", "orders.csv"}, missing.Missing)
}

func TestUploadDir_AllFourFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "events.csv", "orders.csv", "events.parquet", "orders.parquet")

	store := new(MockStore)
	for _, key := range []string{
		"data-analytics-demo/events/events.csv",
		"data-analytics-demo/orders/orders.csv",
		"data-analytics-demo/events/events.parquet",
		"data-analytics-demo/orders/orders.parquet",
	} {
		store.On("UploadFile", mock.Anything, "bucket", key).Return(nil).Once()
	}

	var out bytes.Buffer
	require.NoError(t, UploadDir(context.Background(), store, dir, "bucket", DefaultPrefix, &out))

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "UploadFile", 4)
	assert.Contains(t, out.String(), "Uploading events.csv -> s3://bucket/data-analytics-demo/events/events.csv\n")
	assert.Contains(t, out.String(), "Done.\n")
}

func TestUploadDir_CSVOnly(t *testing.T) {
	dir := t.TempDir()
	// A lone parquet file is ignored: the pair is uploaded together or not at all.
	touch(t, dir, "events.csv", "orders.csv", "events.parquet")

	store := new(MockStore)
	store.On("UploadFile", filepath.Join(dir, "events.csv"), "bucket", "demo/events/events.csv").Return(nil).Once()
	store.On("UploadFile", filepath.Join(dir, "orders.csv"), "bucket", "demo/orders/orders.csv").Return(nil).Once()

	require.NoError(t, UploadDir(context.Background(), store, dir, "bucket", "demo/", &bytes.Buffer{}))

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "UploadFile", 2)
}

func TestUploadDir_StopsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "events.csv", "orders.csv")

	store := new(MockStore)
	store.On("UploadFile", mock.Anything, "bucket", "p/events/events.csv").Return(errors.New("network down")).Once()

	err := UploadDir(context.Background(), store, dir, "bucket", "p", &bytes.Buffer{})
	assert.ErrorContains(t, err, "network down")
	store.AssertNumberOfCalls(t, "UploadFile", 1)
}

func TestUploadDir_RequiresBucket(t *testing.T) {
	store := new(MockStore)
	err := UploadDir(context.Background(), store, t.TempDir(), "", DefaultPrefix, &bytes.Buffer{})
	assert.ErrorContains(t, err, "bucket is required")
	store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlan_EmptyPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "events.csv", "orders.csv")

	uploads, err := Plan(dir, "")
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "events/events.csv", uploads[0].Key)
	assert.Equal(t, "orders/orders.csv", uploads[1].Key)
}
