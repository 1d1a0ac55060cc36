package generator

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidOptions = errors.New("invalid generator options")

// Options controls the size and shape of a generated dataset.
type Options struct {
	Days                int
	Users               int
	AvgSessionsPerUser  float64
	AvgEventsPerSession float64
	Seed                int64
	// End is the upper bound of the lookback window. Zero means the current UTC hour.
	End time.Time
}

func DefaultOptions() Options {
	return Options{
		Days:                30,
		Users:               800,
		AvgSessionsPerUser:  3.2,
		AvgEventsPerSession: 8.5,
		Seed:                42,
	}
}

func (o Options) Validate() error {
	if o.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidOptions, o.Days)
	}
	if o.Users <= 0 {
		return fmt.Errorf("%w: users must be positive, got %d", ErrInvalidOptions, o.Users)
	}
	if !positiveFinite(o.AvgSessionsPerUser) {
		return fmt.Errorf("%w: avg sessions per user must be positive, got %v", ErrInvalidOptions, o.AvgSessionsPerUser)
	}
	if !positiveFinite(o.AvgEventsPerSession) {
		return fmt.Errorf("%w: avg events per session must be positive, got %v", ErrInvalidOptions, o.AvgEventsPerSession)
	}
	return nil
}

func (o Options) windowEnd() time.Time {
	if o.End.IsZero() {
		return time.Now().UTC().Truncate(time.Hour)
	}
	return o.End.UTC()
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
