package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "ecomdemo/datagen/config"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_UploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("event_id\ne_1\n"), 0o644))

	fake := &fakeS3{}
	store := &S3Store{client: fake}

	require.NoError(t, store.UploadFile(context.Background(), path, "demo-bucket", "p/events/events.csv"))

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "demo-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "p/events/events.csv", aws.ToString(in.Key))
	assert.Equal(t, "text/csv", aws.ToString(in.ContentType))
	assert.Equal(t, int64(13), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "event_id\ne_1\n", fake.bodies[0])
}

func TestS3Store_UploadFileErrors(t *testing.T) {
	store := &S3Store{client: &fakeS3{err: errors.New("access denied")}}

	err := store.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "b", "k")
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	err = store.UploadFile(context.Background(), path, "b", "k")
	assert.ErrorContains(t, err, "access denied")

	assert.Error(t, store.UploadFile(context.Background(), path, "b", ""))
}

func TestURLAndContentType(t *testing.T) {
	assert.Equal(t, "s3://bucket/a/b.csv", URL(&S3Store{}, "bucket", "a/b.csv"))
	assert.Equal(t, "gs://bucket/a/b.csv", URL(&GCSStore{}, "bucket", "a/b.csv"))

	assert.Equal(t, "application/vnd.apache.parquet", contentType("x/orders.parquet"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), appconfig.StorageConfig{Backend: "azure"})
	assert.ErrorContains(t, err, "unknown storage backend")
}

type fakeObjectWriter struct {
	ctx         context.Context
	contentType string
	buf         bytes.Buffer
	writeErr    error
	closed      bool
}

func (w *fakeObjectWriter) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.buf.Write(p)
}

func (w *fakeObjectWriter) Close() error {
	w.closed = true
	return nil
}

func fakeGCS(w *fakeObjectWriter) *GCSStore {
	return &GCSStore{newWriter: func(ctx context.Context, bucket, key, contentType string) io.WriteCloser {
		w.ctx = ctx
		w.contentType = contentType
		return w
	}}
}

func TestGCSStore_UploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.parquet")
	require.NoError(t, os.WriteFile(path, []byte("PAR1"), 0o644))

	w := &fakeObjectWriter{}
	require.NoError(t, fakeGCS(w).UploadFile(context.Background(), path, "demo-bucket", "p/orders/orders.parquet"))

	assert.True(t, w.closed)
	assert.Equal(t, "PAR1", w.buf.String())
	assert.Equal(t, "application/vnd.apache.parquet", w.contentType)
}

func TestGCSStore_CopyFailureAbortsWithoutCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("event_id\ne_1\n"), 0o644))

	w := &fakeObjectWriter{writeErr: errors.New("connection reset")}
	err := fakeGCS(w).UploadFile(context.Background(), path, "demo-bucket", "p/events/events.csv")

	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, w.closed, "a failed copy must not finalize the object")
	require.NotNil(t, w.ctx)
	assert.ErrorIs(t, w.ctx.Err(), context.Canceled)
}
