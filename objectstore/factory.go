package objectstore

import (
	"context"
	"fmt"

	appconfig "ecomdemo/datagen/config"
)

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg appconfig.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "s3", "":
		return NewS3Store(ctx, S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
