package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/config"
)

func TestLoad_EmptyPath_ReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: 9090\nlog_level: debug\nsweep_pass_limit: 3\n",
	), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.SweepPassLimit)
	assert.Equal(t, "budget.db", cfg.DBPath, "unset keys keep defaults")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad port":       "port: -1\n",
		"bad pass limit": "sweep_pass_limit: 0\n",
		"malformed yaml": "port: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "budget.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
