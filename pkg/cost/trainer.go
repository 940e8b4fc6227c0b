package cost

import (
	"livewire/internal/models"
)

// TrainerOptions controls how training samples are collected and binned.
type TrainerOptions struct {
	// Length is the maximum number of points taken from the traced path
	Length int

	// MinPoints is the sample count below which training is skipped
	MinPoints int

	// GradPointsNeeded is the sample count below which the gradient
	// histogram is blended with the untrained ramp
	GradPointsNeeded int

	// Granularities of the four histograms
	EdgeGranularity    int
	GradGranularity    int
	InsideGranularity  int
	OutsideGranularity int
}

// DefaultTrainerOptions returns the standard training configuration.
func DefaultTrainerOptions() TrainerOptions {
	return TrainerOptions{
		Length:             32,
		MinPoints:          8,
		GradPointsNeeded:   32,
		EdgeGranularity:    256,
		GradGranularity:    1024,
		InsideGranularity:  256,
		OutsideGranularity: 256,
	}
}

// ParentFunc returns the predecessor of p in a shortest-path tree, or false
// at the root.
type ParentFunc func(p models.Point) (models.Point, bool)

// Trainer derives cost histograms from the most recently traced path.
type Trainer struct {
	opts TrainerOptions
}

// NewTrainer creates a trainer.
func NewTrainer(opts TrainerOptions) *Trainer {
	return &Trainer{opts: opts}
}

// Options returns the trainer configuration.
func (t *Trainer) Options() TrainerOptions {
	return t.opts
}

// CollectSamples walks the parent chain backwards from start and returns at
// most Length points, start included.
func (t *Trainer) CollectSamples(start models.Point, parent ParentFunc) []models.Point {
	samples := make([]models.Point, 0, t.opts.Length)
	p, ok := start, true
	for ok && len(samples) < t.opts.Length {
		samples = append(samples, p)
		p, ok = parent(p)
	}
	return samples
}

// Train rebuilds all four histograms of model from samples and installs them.
// The gradient histogram is built from the steps between consecutive samples
// so that it bins the same move-scaled value Model.Cost looks up.
// Nothing from earlier training calls is kept. With fewer than MinPoints
// samples the model is left untouched and Train returns false.
func (t *Trainer) Train(model *Model, samples []models.Point) bool {
	if len(samples) < t.opts.MinPoints {
		return false
	}
	set := model.Features()

	h := &Histograms{
		Edge:     BuildHistogram(samples, set.Greyscale, t.opts.EdgeGranularity),
		Gradient: BuildHistogramValues(stepGradients(model, samples), t.opts.GradGranularity),
		Inside:   BuildHistogram(samples, set.Inside, t.opts.InsideGranularity),
		Outside:  BuildHistogram(samples, set.Outside, t.opts.OutsideGranularity),
	}
	BlendStatic(h.Gradient, len(samples), t.opts.GradPointsNeeded)

	model.SetHistograms(h)
	return true
}

// stepGradients returns the gradient feature of every step of the sampled
// chain. samples[i+1] is the parent of samples[i], so each step runs from
// samples[i+1] to samples[i].
func stepGradients(model *Model, samples []models.Point) []float64 {
	values := make([]float64, 0, max(len(samples)-1, 0))
	for i := 0; i+1 < len(samples); i++ {
		values = append(values, model.gradientFeature(samples[i+1], samples[i]))
	}
	return values
}
