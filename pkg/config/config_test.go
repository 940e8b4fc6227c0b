package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livewire/pkg/livewire"
	"livewire/pkg/scissors"
)

func TestDefaultConfigMatchesEngineDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, scissors.DefaultOptions(), cfg.ScissorsOptions())
	assert.Equal(t, livewire.DefaultOptions(), cfg.SessionOptions())
	assert.GreaterOrEqual(t, cfg.Processing.NumCores, 1)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
search:
  granularityBits: 10
training:
  enabled: false
  minPoints: 4
session:
  snapRadius: 2.5
output:
  logFormat: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Search.GranularityBits)
	assert.Equal(t, 500, cfg.Search.PointsPerBatch)
	assert.Equal(t, 4, cfg.ScissorsOptions().Training.MinPoints)
	assert.Equal(t, 32, cfg.ScissorsOptions().Training.Length)
	assert.False(t, cfg.SessionOptions().Train)
	assert.Equal(t, 2.5, cfg.SessionOptions().SnapRadius)
	assert.Equal(t, "json", cfg.Output.LogFormat)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [1, 2"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"bits too small":  func(c *Config) { c.Search.GranularityBits = 0 },
		"bits too large":  func(c *Config) { c.Search.GranularityBits = 17 },
		"batch":           func(c *Config) { c.Search.PointsPerBatch = 0 },
		"min points":      func(c *Config) { c.Training.MinPoints = c.Training.Length + 1 },
		"granularity":     func(c *Config) { c.Training.GradGranularity = 2 },
		"edge width":      func(c *Config) { c.Training.EdgeWidth = 0 },
		"close tolerance": func(c *Config) { c.Session.CloseTolerance = -1 },
		"cores":           func(c *Config) { c.Processing.NumCores = 0 },
		"log format":      func(c *Config) { c.Output.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
