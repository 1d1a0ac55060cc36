package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/config"
	"ecomdemo/datagen/logger"
	"ecomdemo/datagen/objectstore"
	"ecomdemo/datagen/uploader"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var missing *uploader.MissingFilesError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Error().Err(err).Msg("upload failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppName, cfg.LogLevel)

	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	bucket := fs.String("bucket", "", "destination bucket (required)")
	prefix := fs.String("prefix", uploader.DefaultPrefix, "key prefix inside the bucket")
	dataDir := fs.String("data-dir", cfg.DataDir, "directory holding the generated files")
	backend := fs.String("backend", cfg.Storage.Backend, "object store backend: s3 or gcs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *bucket == "" {
		fs.Usage()
		return errors.New("--bucket is required")
	}

	// Check inputs before touching any credentials.
	uploads, err := uploader.Plan(*dataDir, *prefix)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageCfg := cfg.Storage
	storageCfg.Backend = strings.ToLower(*backend)
	if err := storageCfg.Validate(); err != nil {
		return err
	}
	store, err := objectstore.New(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return uploader.Run(ctx, store, *bucket, uploads, os.Stdout)
}
