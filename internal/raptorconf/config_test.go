package raptorconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValidOnItsOwn(t *testing.T) {
	cfg := Default()
	assert.Equal(t, Development, cfg.Environment)
	assert.Greater(t, cfg.DefaultMaxRides, 0)
	assert.Greater(t, cfg.DefaultWalkSpeedMetersPerSecond, 0.0)
}

func TestLoadWithNoFilesReturnsDefault(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYamlOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "environment: production\ndefault_max_rides: 6\nnetwork_path: /data/gtfs.zip\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, 6, cfg.DefaultMaxRides)
	assert.Equal(t, "/data/gtfs.zip", cfg.NetworkPath)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, Default().DefaultMaxWalkMinutes, cfg.DefaultMaxWalkMinutes)
}

func TestLoadAppliesEnvironmentVariableOverrides(t *testing.T) {
	t.Setenv("RAPTOR_LOG_LEVEL", "debug")
	t.Setenv("RAPTOR_NETWORK_PATH", "/env/gtfs.zip")
	defer os.Unsetenv("RAPTOR_LOG_LEVEL")
	defer os.Unsetenv("RAPTOR_NETWORK_PATH")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/env/gtfs.zip", cfg.NetworkPath)
}
