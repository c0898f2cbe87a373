package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Windows.By)
	assert.Nil(t, cfg.Output.Format)
	assert.Empty(t, cfg.Filter.Require)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[windows]
by = "distance"
length = 1000
qdh = 25.0

[filter]
require = ["altitude", "distance"]

[output]
format = "table"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Windows.By)
	assert.Equal(t, "distance", *cfg.Windows.By)
	require.NotNil(t, cfg.Windows.Length)
	assert.InDelta(t, 1000, *cfg.Windows.Length, 0)
	assert.Nil(t, cfg.Windows.Count)
	require.NotNil(t, cfg.Windows.QDH)
	assert.InDelta(t, 25, *cfg.Windows.QDH, 0)
	assert.Equal(t, []string{"altitude", "distance"}, cfg.Filter.Require)
	require.NotNil(t, cfg.Output.Format)
	assert.Equal(t, "table", *cfg.Output.Format)
	require.NotNil(t, cfg.Log.Level)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.Nil(t, cfg.Log.Format)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[windows]\nsize = 3\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "windows.size")
}

func TestDefaultConfigPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "tcx-intervals", "config.toml"), DefaultConfigPath())
}
