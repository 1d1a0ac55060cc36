package dataset

import (
	"path/filepath"

	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/generator"
)

type Result struct {
	Dir       string
	Events    int
	Orders    int
	Parquet   bool
	SkipCause error
}

func (r Result) EventsCSVPath() string { return filepath.Join(r.Dir, EventsCSV) }
func (r Result) OrdersCSVPath() string { return filepath.Join(r.Dir, OrdersCSV) }

// Write persists ds under dir. CSV output is required; Parquet is best effort when
// withParquet is set, and a failure there only downgrades the result.
func Write(dir string, ds *generator.Dataset, withParquet bool) (Result, error) {
	res := Result{Dir: dir, Events: len(ds.Events), Orders: len(ds.Orders)}

	if err := WriteCSV(dir, ds.Events, ds.Orders); err != nil {
		return res, err
	}
	if !withParquet {
		return res, nil
	}

	if err := WriteParquet(dir, ds.Events, ds.Orders); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("skipping parquet output (optional)")
		res.SkipCause = err
		return res, nil
	}
	res.Parquet = true
	return res, nil
}
