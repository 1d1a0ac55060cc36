package objectstore

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
)

// Store copies a local file to (bucket, key). Re-uploading a key overwrites it.
type Store interface {
	UploadFile(ctx context.Context, localPath, bucket, key string) error
	// Scheme is the URL scheme used when printing destinations, e.g. "s3".
	Scheme() string
	Close() error
}

// URL renders a destination the way the provider's CLI would.
func URL(s Store, bucket, key string) string {
	return fmt.Sprintf("%s://%s/%s", s.Scheme(), bucket, key)
}

func contentType(localPath string) string {
	switch filepath.Ext(localPath) {
	case ".csv":
		return "text/csv"
	case ".parquet":
		return "application/vnd.apache.parquet"
	}
	if t := mime.TypeByExtension(filepath.Ext(localPath)); t != "" {
		return t
	}
	return "application/octet-stream"
}
