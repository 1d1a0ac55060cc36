package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdemo/datagen/models"
)

func TestIsValidInterval(t *testing.T) {
	assert.True(t, IsValidInterval("Day"))
	assert.True(t, IsValidInterval("Quarter"))
	assert.False(t, IsValidInterval("day"))
	assert.False(t, IsValidInterval("Day(event_ts); DROP TABLE x; --"))
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	start, end, err := ParseTimeRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-7*24*time.Hour), start)
	assert.Equal(t, now, end)

	start, end, err = ParseTimeRange("2025-05-01T00:00:00Z", "2025-05-02T00:00:00+02:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 5, 1, 22, 0, 0, 0, time.UTC), end)

	_, _, err = ParseTimeRange("yesterday", "", now)
	assert.ErrorContains(t, err, "'start'")

	_, _, err = ParseTimeRange("", "2025-13-01", now)
	assert.ErrorContains(t, err, "'end'")

	_, _, err = ParseTimeRange("2025-05-03T00:00:00Z", "2025-05-02T00:00:00Z", now)
	assert.ErrorContains(t, err, "must not be after")
}

func TestParseLimit(t *testing.T) {
	limit, err := ParseLimit("", 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), limit)

	limit, err = ParseLimit("25", 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), limit)

	for _, bad := range []string{"0", "-1", "ten"} {
		_, err := ParseLimit(bad, 10)
		assert.Error(t, err, bad)
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("s3cret")
	require.NoError(t, err)

	token, err := issuer.Generate(&models.Analyst{ID: 7, Email: "ana@example.com"})
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.AnalystID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer, err := NewTokenIssuer("s3cret")
	require.NoError(t, err)
	other, err := NewTokenIssuer("another")
	require.NoError(t, err)

	token, err := other.Generate(&models.Analyst{ID: 1, Email: "x@example.com"})
	require.NoError(t, err)
	_, err = issuer.Validate(token)
	assert.Error(t, err)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.Generate(&models.Analyst{ID: 1, Email: "x@example.com"})
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.Validate(expired)
	assert.Error(t, err)

	_, err = NewTokenIssuer("")
	assert.Error(t, err)
}
