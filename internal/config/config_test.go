package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, 10000, cfg.Catalog.MaxRows)
	assert.Equal(t, "|", cfg.Catalog.GenreSep)
	assert.Equal(t, 60, cfg.Recommend.TitleThreshold)
	assert.Equal(t, 9, cfg.Recommend.TitleLimit)
	assert.Equal(t, 15, cfg.Recommend.GenreLimit)
	assert.Equal(t, 5000, cfg.Recommend.MaxFeatures)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movierec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
catalog:
  path: /data/movies.csv
  max_rows: 500
poster:
  timeout: 750ms
`), 0o644))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "9100")
	t.Setenv("ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GENRE_LIMIT", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/data/movies.csv", cfg.Catalog.Path)
	assert.Equal(t, 500, cfg.Catalog.MaxRows)
	assert.Equal(t, 750*time.Millisecond, cfg.Poster.Timeout)
	assert.Equal(t, 9, cfg.Recommend.GenreLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Recommend.TitleThreshold = 101
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Poster.Enabled = true
	bad.Poster.BaseURL = ""
	assert.Error(t, bad.Validate())
}
