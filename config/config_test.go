package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "clickstream-demo", cfg.AppName)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.Equal(t, "8080", cfg.API.Port)
	assert.NoError(t, cfg.Storage.Validate())
	assert.NoError(t, cfg.API.Validate())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_BACKEND", "GCS")
	v.Set("LOG_LEVEL", "debug")
	v.Set("CLICKHOUSE_NATIVE_PORT", "9440")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "gcs", cfg.Storage.Backend)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 9440, cfg.ClickHouse.Port)
}

func TestStorageConfig_RejectsUnknownBackend(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_BACKEND", "azure")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Storage.Validate(), "STORAGE_BACKEND")
	assert.NoError(t, cfg.ClickHouse.Validate())
}

func TestLoad_IgnoresSettingsOfUnusedSections(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "azure")
	t.Setenv("CLICKHOUSE_NATIVE_PORT", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)

	assert.ErrorContains(t, cfg.Storage.Validate(), "STORAGE_BACKEND")
	assert.ErrorContains(t, cfg.ClickHouse.Validate(), "CLICKHOUSE_NATIVE_PORT")
}

func TestLoad_WritesNothingBeforeLoggerInit(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	_, err := Load()
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
