package tracing

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"livewire/internal/models"
)

// Job is one boundary to trace: an image and the anchors clicked on it, in
// order.
type Job struct {
	// Name identifies the job in logs, results and intermediary output
	Name string `yaml:"name"`

	// Image is the path of the input image
	Image string `yaml:"image"`

	// Anchors are the control points of the boundary
	Anchors []models.Point `yaml:"anchors"`

	// Close joins the last anchor back to the first one
	Close bool `yaml:"close"`
}

// Validate checks that the job can be processed
func (j Job) Validate() error {
	if j.Image == "" {
		return fmt.Errorf("job %q: no image", j.Name)
	}
	if len(j.Anchors) == 0 {
		return fmt.Errorf("job %q: no anchors", j.Name)
	}
	return nil
}

// JobFile is the YAML document listing batch jobs
type JobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads a job file. Jobs without a name are named after their
// position in the file.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading job file: %w", err)
	}

	var file JobFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing job file: %w", err)
	}

	for i := range file.Jobs {
		if file.Jobs[i].Name == "" {
			file.Jobs[i].Name = fmt.Sprintf("job_%03d", i)
		}
		if err := file.Jobs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return file.Jobs, nil
}

// ParseAnchors parses a list of points written as "x,y;x,y;...".
func ParseAnchors(s string) ([]models.Point, error) {
	var pts []models.Point
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		xs, ys, ok := strings.Cut(item, ",")
		if !ok {
			return nil, fmt.Errorf("invalid anchor %q: expected x,y", item)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("invalid anchor %q: %w", item, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("invalid anchor %q: %w", item, err)
		}
		pts = append(pts, models.Pt(x, y))
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no anchors in %q", s)
	}
	return pts, nil
}
