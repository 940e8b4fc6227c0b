package tracing

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"livewire/internal/models"
	"livewire/pkg/features"
)

// Metrics describe how closely a traced boundary follows image edges.
type Metrics struct {
	// Length is the number of path pixels
	Length int `yaml:"length"`

	// MeanGradient is the mean inverted gradient along the path. Lower
	// values mean the path runs over stronger edges.
	MeanGradient float64 `yaml:"meanGradient"`

	// EdgeFraction is the share of path pixels on a Laplacian zero crossing
	EdgeFraction float64 `yaml:"edgeFraction"`
}

// Result is the outcome of one job.
type Result struct {
	Name string `yaml:"name"`

	// Path is the committed boundary with its control points
	Path models.Path `yaml:"path"`

	// Closed reports whether the boundary was joined back to its start
	Closed bool `yaml:"closed"`

	// Cost is the summed step cost of Path under the final cost model
	Cost float64 `yaml:"cost"`

	// TrainedSegments counts committed segments that trained the engine
	TrainedSegments int `yaml:"trainedSegments"`

	Metrics Metrics `yaml:"metrics"`

	Elapsed time.Duration `yaml:"elapsed"`
}

// calculateMetrics evaluates path against the feature grids it was traced on
func calculateMetrics(set *features.Set, path []models.Point) Metrics {
	m := Metrics{Length: len(path)}
	if len(path) == 0 {
		return m
	}

	grad := make([]float64, len(path))
	edges := 0
	for i, p := range path {
		grad[i] = set.Gradient.AtPoint(p)
		if set.Laplace.AtPoint(p) == 0 {
			edges++
		}
	}
	m.MeanGradient = stat.Mean(grad, nil)
	m.EdgeFraction = float64(edges) / float64(len(path))
	return m
}

// ResultFile is the YAML document written by WriteResults
type ResultFile struct {
	Results []Result `yaml:"results"`
}

// WriteResults saves results as YAML
func WriteResults(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	data, err := yaml.Marshal(ResultFile{Results: results})
	if err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing results: %w", err)
	}
	return nil
}

// ReadResults loads a file written by WriteResults
func ReadResults(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}

	var file ResultFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing results: %w", err)
	}
	return file.Results, nil
}
