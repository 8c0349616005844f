package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "contactplus.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "AT", cfg.Merge.DefaultRegion)
	assert.Equal(t, 256*1024, cfg.Merge.PhotoCeilingBytes)
	assert.False(t, cfg.Suggest.Enabled)
	assert.Equal(t, 10, cfg.Suggest.TimeoutSecs)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentRecords)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
store:
  driver: postgres
  database_url: postgres://localhost/contactplus
merge:
  source_priority: [phone, gmail]
  default_region: DE
log:
  level: debug
  format: console
`), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, []string{"phone", "gmail"}, cfg.Merge.SourcePriority)
	assert.Equal(t, "DE", cfg.Merge.DefaultRegion)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 256*1024, cfg.Merge.PhotoCeilingBytes, "unset keys keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONTACTPLUS_MERGE_DEFAULT_REGION", "CH")
	t.Setenv("CONTACTPLUS_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "CH", cfg.Merge.DefaultRegion)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_OK(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
