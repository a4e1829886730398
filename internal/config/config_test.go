package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CASTORE_ROOT", "")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Root)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, time.Hour, cfg.StagingGrace)
	assert.Equal(t, "default", cfg.CompressionLevel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
root: /srv/castore
log_level: DEBUG
log_format: json
concurrency: 16
staging_grace: 15m
compression_level: best
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/castore", cfg.Root)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 16, cfg.Concurrency)
	assert.Equal(t, 15*time.Minute, cfg.StagingGrace)
	assert.Equal(t, "best", cfg.CompressionLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: /from/file\nconcurrency: 2\n"), 0644))
	t.Setenv("CASTORE_ROOT", "/from/env")
	t.Setenv("CASTORE_CONCURRENCY", "8")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Root)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: 0\n"), 0644))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Concurrency")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := &Config{
		LogLevel:         "loud",
		LogFormat:        "text",
		Concurrency:      1,
		CompressionLevel: "default",
	}
	assert.Error(t, Validate(cfg))

	cfg.LogLevel = "info"
	assert.NoError(t, Validate(cfg))
}
