package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// objectWriterFunc opens a writer for one object. Cancelling ctx before Close
// abandons the upload without creating the object.
type objectWriterFunc func(ctx context.Context, bucket, key, contentType string) io.WriteCloser

type GCSStore struct {
	client    *storage.Client
	newWriter objectWriterFunc
}

// NewGCSStore uses application default credentials unless credentialsFile is set.
func NewGCSStore(ctx context.Context, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	g := &GCSStore{client: client}
	g.newWriter = func(ctx context.Context, bucket, key, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(key).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return g, nil
}

func (g *GCSStore) Scheme() string { return "gs" }

func (g *GCSStore) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GCSStore) UploadFile(ctx context.Context, localPath, bucket, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.newWriter(ctx, bucket, key, contentType(localPath))
	n, err := io.Copy(w, f)
	if err != nil {
		// Closing would commit a truncated object; cancelling aborts the upload.
		cancel()
		return fmt.Errorf("failed to upload %s to gs://%s/%s: %w", localPath, bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, key, err)
	}

	log.Debug().Str("bucket", bucket).Str("key", key).Int64("bytes", n).Msg("uploaded object")
	return nil
}
