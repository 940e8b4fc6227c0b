// Package config provides configuration loading and management for livewire.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"livewire/pkg/cost"
	"livewire/pkg/livewire"
	"livewire/pkg/scissors"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Search parameters
	Search struct {
		// GranularityBits sets the bucket queue size to 2^bits
		GranularityBits int `yaml:"granularityBits"`

		// PointsPerBatch is the number of pixels finalized per DoWork call
		PointsPerBatch int `yaml:"pointsPerBatch"`
	} `yaml:"search"`

	// Training parameters
	Training struct {
		// Enabled turns cost model training on committed segments on or off
		Enabled bool `yaml:"enabled"`

		// Length is the maximum number of path pixels sampled per training
		Length int `yaml:"length"`

		// MinPoints is the smallest sample count that triggers training
		MinPoints int `yaml:"minPoints"`

		// GradPointsNeeded is the sample count above which the gradient
		// histogram is used without blending
		GradPointsNeeded int `yaml:"gradPointsNeeded"`

		// Histogram sizes
		EdgeGranularity    int `yaml:"edgeGranularity"`
		GradGranularity    int `yaml:"gradGranularity"`
		InsideGranularity  int `yaml:"insideGranularity"`
		OutsideGranularity int `yaml:"outsideGranularity"`

		// EdgeWidth is the sampling distance of the inside/outside bands
		EdgeWidth int `yaml:"edgeWidth"`
	} `yaml:"training"`

	// Session parameters
	Session struct {
		// CloseTolerance is the click distance from the first anchor that closes the boundary
		CloseTolerance float64 `yaml:"closeTolerance"`

		// SnapRadius snaps clicks to edges within this distance, 0 disables snapping
		SnapRadius float64 `yaml:"snapRadius"`
	} `yaml:"session"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many jobs run in parallel
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to save feature grids per job
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where feature grids are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// LogLevel is one of debug, info, warn, error
		LogLevel string `yaml:"logLevel"`

		// LogFormat is text or json
		LogFormat string `yaml:"logFormat"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	opts := scissors.DefaultOptions()
	cfg.Search.GranularityBits = opts.GranularityBits
	cfg.Search.PointsPerBatch = opts.PointsPerBatch

	cfg.Training.Enabled = true
	cfg.Training.Length = opts.Training.Length
	cfg.Training.MinPoints = opts.Training.MinPoints
	cfg.Training.GradPointsNeeded = opts.Training.GradPointsNeeded
	cfg.Training.EdgeGranularity = opts.Training.EdgeGranularity
	cfg.Training.GradGranularity = opts.Training.GradGranularity
	cfg.Training.InsideGranularity = opts.Training.InsideGranularity
	cfg.Training.OutsideGranularity = opts.Training.OutsideGranularity
	cfg.Training.EdgeWidth = opts.EdgeWidth

	session := livewire.DefaultOptions()
	cfg.Session.CloseTolerance = session.CloseTolerance
	cfg.Session.SnapRadius = session.SnapRadius

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.LogLevel = "info"
	cfg.Output.LogFormat = "text"

	return cfg
}

// Validate checks that every parameter is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Search.GranularityBits < 1 || c.Search.GranularityBits > 16 {
		errs = append(errs, fmt.Errorf("search.granularityBits must be in [1,16], got %d", c.Search.GranularityBits))
	}
	if c.Search.PointsPerBatch < 1 {
		errs = append(errs, fmt.Errorf("search.pointsPerBatch must be positive, got %d", c.Search.PointsPerBatch))
	}
	if c.Training.Length < 1 {
		errs = append(errs, fmt.Errorf("training.length must be positive, got %d", c.Training.Length))
	}
	if c.Training.MinPoints > c.Training.Length {
		errs = append(errs, fmt.Errorf("training.minPoints %d exceeds training.length %d", c.Training.MinPoints, c.Training.Length))
	}
	for name, g := range map[string]int{
		"edgeGranularity":    c.Training.EdgeGranularity,
		"gradGranularity":    c.Training.GradGranularity,
		"insideGranularity":  c.Training.InsideGranularity,
		"outsideGranularity": c.Training.OutsideGranularity,
	} {
		if g < 4 {
			errs = append(errs, fmt.Errorf("training.%s must be at least 4, got %d", name, g))
		}
	}
	if c.Training.EdgeWidth < 1 {
		errs = append(errs, fmt.Errorf("training.edgeWidth must be positive, got %d", c.Training.EdgeWidth))
	}
	if c.Session.CloseTolerance < 0 {
		errs = append(errs, fmt.Errorf("session.closeTolerance must not be negative, got %g", c.Session.CloseTolerance))
	}
	if c.Processing.NumCores < 1 {
		errs = append(errs, fmt.Errorf("processing.numCores must be positive, got %d", c.Processing.NumCores))
	}
	switch c.Output.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("output.logFormat must be text or json, got %q", c.Output.LogFormat))
	}

	return errors.Join(errs...)
}

// ScissorsOptions converts the search and training sections into engine options
func (c *Config) ScissorsOptions() scissors.Options {
	return scissors.Options{
		GranularityBits: c.Search.GranularityBits,
		PointsPerBatch:  c.Search.PointsPerBatch,
		EdgeWidth:       c.Training.EdgeWidth,
		Training: cost.TrainerOptions{
			Length:             c.Training.Length,
			MinPoints:          c.Training.MinPoints,
			GradPointsNeeded:   c.Training.GradPointsNeeded,
			EdgeGranularity:    c.Training.EdgeGranularity,
			GradGranularity:    c.Training.GradGranularity,
			InsideGranularity:  c.Training.InsideGranularity,
			OutsideGranularity: c.Training.OutsideGranularity,
		},
	}
}

// SessionOptions converts the session section into livewire session options
func (c *Config) SessionOptions() livewire.Options {
	return livewire.Options{
		CloseTolerance: c.Session.CloseTolerance,
		SnapRadius:     c.Session.SnapRadius,
		Train:          c.Training.Enabled,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
