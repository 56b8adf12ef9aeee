package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Warehouse.Host)
	assert.Equal(t, 5432, cfg.Warehouse.Port)
	assert.Equal(t, "prefer", cfg.Warehouse.SSLMode)
	assert.Equal(t, "dev_marts", cfg.Warehouse.MartSchema)
	assert.Equal(t, "dev_intermediate", cfg.Warehouse.IntermediateSchema)
	assert.Equal(t, 60, cfg.Cache.TTLMinutes)
	assert.Equal(t, 6, cfg.Cache.QueriesPerMinute)
	assert.Equal(t, "gymscope.db", cfg.Snapshot.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
warehouse:
  host: warehouse.internal
  user: analytics
  database: research
  mart_schema: prod_marts
server:
  port: 9090
cache:
  ttl_minutes: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warehouse.internal", cfg.Warehouse.Host)
	assert.Equal(t, "analytics", cfg.Warehouse.User)
	assert.Equal(t, "prod_marts", cfg.Warehouse.MartSchema)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Cache.TTLMinutes)
	// Untouched keys keep their defaults.
	assert.Equal(t, "dev_intermediate", cfg.Warehouse.IntermediateSchema)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GYMSCOPE_WAREHOUSE_HOST", "env-host")
	t.Setenv("GYMSCOPE_SERVER_PORT", "7070")
	t.Setenv("GYMSCOPE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Warehouse.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("warehouse: ["), 0o644))
	t.Chdir(dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "verbose", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "error", Format: "console"}))
}
