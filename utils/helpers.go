package utils

import (
	"fmt"
	"strconv"
	"time"
)

const defaultWindow = 7 * 24 * time.Hour

func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}

// ParseTimeRange reads optional RFC3339 bounds. Missing bounds default to the
// seven days ending at now.
func ParseTimeRange(startParam, endParam string, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if endParam != "" {
		t, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' timestamp format, use RFC3339 (e.g. 2006-01-02T15:04:05Z)")
		}
		end = t.UTC()
	}

	start := now.UTC().Add(-defaultWindow)
	if startParam != "" {
		t, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' timestamp format, use RFC3339 (e.g. 2006-01-02T15:04:05Z)")
		}
		start = t.UTC()
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("'start' must not be after 'end'")
	}
	return start, end, nil
}

// ParseLimit returns def for an empty value and rejects anything but a positive integer.
func ParseLimit(param string, def uint64) (uint64, error) {
	if param == "" {
		return def, nil
	}
	limit, err := strconv.ParseUint(param, 10, 64)
	if err != nil || limit == 0 {
		return 0, fmt.Errorf("invalid 'limit' parameter, must be a positive integer")
	}
	return limit, nil
}
