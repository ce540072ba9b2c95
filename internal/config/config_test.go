package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Workers)
	assert.Nil(t, cfg.Defaults.BusyThreshold)
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[defaults]
workers = 32
busy_threshold = 0.8
interval = 60
single_pool = true
queue = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFrom(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Defaults.Workers)
	assert.Equal(t, 32, *cfg.Defaults.Workers)
	require.NotNil(t, cfg.Defaults.BusyThreshold)
	assert.Equal(t, 0.8, *cfg.Defaults.BusyThreshold)
	require.NotNil(t, cfg.Defaults.Interval)
	assert.Equal(t, 60, *cfg.Defaults.Interval)
	require.NotNil(t, cfg.Defaults.SinglePool)
	assert.True(t, *cfg.Defaults.SinglePool)
	require.NotNil(t, cfg.Defaults.Queue)
	assert.True(t, *cfg.Defaults.Queue)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := loadFrom(path)
	assert.Error(t, err)
}

func TestPathUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/chuid/config.toml", Path())
}
