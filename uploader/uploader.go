package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/dataset"
	"ecomdemo/datagen/objectstore"
)

const DefaultPrefix = "data-analytics-demo"

// MissingFilesError lists required inputs absent from the data directory.
type MissingFilesError struct {
	Dir     string
	Missing []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("missing files in %s, run the generator first. Missing: %s", e.Dir, strings.Join(e.Missing, ", "))
}

// Upload is one local file and the key it is copied to.
type Upload struct {
	LocalPath string
	Key       string
}

type dataFile struct {
	name   string
	folder string
}

var (
	required = []dataFile{{dataset.EventsCSV, "events"}, {dataset.OrdersCSV, "orders"}}
	optional = []dataFile{{dataset.EventsParquet, "events"}, {dataset.OrdersParquet, "orders"}}
)

// Plan checks the data directory and lays out destination keys. It never touches storage.
// Both CSVs are required; the parquet pair is included only when both files exist.
func Plan(dataDir, prefix string) ([]Upload, error) {
	var missing []string
	for _, f := range required {
		ok, err := exists(filepath.Join(dataDir, f.name))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFilesError{Dir: dataDir, Missing: missing}
	}

	files := append([]dataFile(nil), required...)
	withParquet := true
	for _, f := range optional {
		ok, err := exists(filepath.Join(dataDir, f.name))
		if err != nil {
			return nil, err
		}
		withParquet = withParquet && ok
	}
	if withParquet {
		files = append(files, optional...)
	}

	prefix = strings.Trim(prefix, "/")
	uploads := make([]Upload, 0, len(files))
	for _, f := range files {
		uploads = append(uploads, Upload{
			LocalPath: filepath.Join(dataDir, f.name),
			Key:       path.Join(prefix, f.folder, f.name),
		})
	}
	return uploads, nil
}

// Run copies every planned file in order and stops at the first failure.
func Run(ctx context.Context, store objectstore.Store, bucket string, uploads []Upload, out io.Writer) error {
	for _, u := range uploads {
		fmt.Fprintf(out, "Uploading %s -> %s\n", filepath.Base(u.LocalPath), objectstore.URL(store, bucket, u.Key))
		if err := store.UploadFile(ctx, u.LocalPath, bucket, u.Key); err != nil {
			return err
		}
		log.Info().Str("file", u.LocalPath).Str("bucket", bucket).Str("key", u.Key).Msg("file uploaded")
	}
	fmt.Fprintln(out, "Done.")
	return nil
}

// UploadDir plans and runs in one step.
func UploadDir(ctx context.Context, store objectstore.Store, dataDir, bucket, prefix string, out io.Writer) error {
	if bucket == "" {
		return errors.New("bucket is required")
	}
	uploads, err := Plan(dataDir, prefix)
	if err != nil {
		return err
	}
	return Run(ctx, store, bucket, uploads, out)
}

func exists(p string) (bool, error) {
	info, err := os.Stat(p)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", p, err)
}
