// Package scissors implements the intelligent scissors (livewire) search: an
// incremental, resumable Dijkstra search over the 8-connected pixel grid of an
// image, with edge-snapping costs that can be trained on the user's strokes.
//
// A Scissors value is not safe for concurrent use. It is meant to be driven
// from a single interaction loop that calls DoWork in bounded batches and
// yields to its own event handling in between.
package scissors

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"livewire/internal/logging"
	"livewire/internal/models"
	"livewire/pkg/cost"
	"livewire/pkg/features"
)

// Options holds the engine tuning parameters.
type Options struct {
	// GranularityBits sets the bucket queue size (2^bits) and the cost
	// quantization scale
	GranularityBits int

	// PointsPerBatch is the number of pixels DoWork finalizes when called
	// with a non-positive limit
	PointsPerBatch int

	// EdgeWidth is the sampling distance of the inside/outside bands
	EdgeWidth int

	// Training configures the cost model adaptation
	Training cost.TrainerOptions
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		GranularityBits: 8,
		PointsPerBatch:  500,
		EdgeWidth:       2,
		Training:        cost.DefaultTrainerOptions(),
	}
}

// Step is a pixel finalized by DoWork together with its predecessor.
type Step struct {
	Point  models.Point
	Parent models.Point

	// HasParent is false for the anchor
	HasParent bool
}

// Scissors is the livewire engine.
//
// Life cycle: SetDimensions, SetData, then any number of SetPoint calls, each
// followed by DoWork/PathTo queries against that anchor.
type Scissors struct {
	opts Options

	width  int
	height int

	features *features.Set
	model    *cost.Model
	trainer  *cost.Trainer
	state    *searchState

	logger *logging.Logger
}

// New creates an engine with no image.
func New(opts Options) *Scissors {
	return &Scissors{
		opts:    opts,
		width:   -1,
		height:  -1,
		trainer: cost.NewTrainer(opts.Training),
		logger:  logging.Noop(),
	}
}

// SetLogger replaces the engine logger.
func (s *Scissors) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	s.logger = l
}

// Options returns the engine configuration.
func (s *Scissors) Options() Options {
	return s.opts
}

// Width returns the image width, or -1 before SetDimensions.
func (s *Scissors) Width() int { return s.width }

// Height returns the image height, or -1 before SetDimensions.
func (s *Scissors) Height() int { return s.height }

// Features returns the feature set of the current image, nil before SetData.
func (s *Scissors) Features() *features.Set { return s.features }

// Model returns the cost model of the current image, nil before SetData.
func (s *Scissors) Model() *cost.Model { return s.model }

// SetDimensions declares the size of the next image. Any loaded image and
// search are dropped.
func (s *Scissors) SetDimensions(width, height int) error {
	if width <= 0 {
		return &ConfigurationError{Field: "width", Expected: 1, Actual: width}
	}
	if height <= 0 {
		return &ConfigurationError{Field: "height", Expected: 1, Actual: height}
	}
	s.width = width
	s.height = height
	s.features = nil
	s.model = nil
	s.state = nil
	return nil
}

// SetData extracts the feature grids from an RGBA buffer of the declared
// dimensions. Training and the current search are reset.
func (s *Scissors) SetData(rgba []byte) error {
	if s.width < 0 || s.height < 0 {
		return ErrDimensionsNotSet
	}
	if want := s.width * s.height * 4; len(rgba) != want {
		return &ConfigurationError{Field: "buffer length", Expected: want, Actual: len(rgba)}
	}

	set, err := features.Extract(rgba, s.width, s.height, s.opts.EdgeWidth)
	if err != nil {
		return fmt.Errorf("scissors: extract features: %w", err)
	}
	s.features = set
	s.model = cost.NewModel(set)
	s.state = nil

	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		g := features.Summarize(set.Gradient)
		s.logger.WithImage(s.width, s.height).Debug("features extracted",
			"gradientMean", g.Mean,
			"gradientStdDev", g.StdDev,
		)
	}
	return nil
}

// SetPoint starts a new search from anchor, discarding the previous one.
func (s *Scissors) SetPoint(anchor models.Point) error {
	if s.features == nil {
		return ErrNoData
	}
	if !anchor.In(s.width, s.height) {
		return &OutOfBoundsError{Point: anchor, Width: s.width, Height: s.height}
	}
	s.state = newSearchState(anchor, s.width, s.height, s.opts.GranularityBits)
	s.logger.Debug("anchor set", "anchor", anchor.String())
	return nil
}

// Anchor returns the current anchor.
func (s *Scissors) Anchor() (models.Point, bool) {
	if s.state == nil {
		return models.Point{}, false
	}
	return s.state.anchor, true
}

// DoWork finalizes up to maxPoints pixels (PointsPerBatch when maxPoints <= 0)
// and returns them with their parents. An empty result means the search is
// exhausted.
func (s *Scissors) DoWork(maxPoints int) ([]Step, error) {
	st := s.state
	if st == nil {
		return nil, ErrNoAnchor
	}
	if maxPoints <= 0 {
		maxPoints = s.opts.PointsPerBatch
	}

	steps := make([]Step, 0, min(maxPoints, st.queue.Len()+8))
	for len(steps) < maxPoints && !st.queue.IsEmpty() {
		idx, err := st.queue.Pop()
		if err != nil {
			return steps, err
		}
		if st.isVisited(idx) {
			continue
		}
		st.visited.Set(uint(idx))

		p := models.FromIndex(idx, s.width)
		step := Step{Point: p}
		step.Parent, step.HasParent = st.parentOf(p)
		steps = append(steps, step)

		s.relax(p, idx)
	}
	return steps, nil
}

// relax offers every unvisited neighbour of the finalized pixel p a path
// through p.
func (s *Scissors) relax(p models.Point, pIdx int) {
	st := s.state
	base := st.cost[pIdx]

	minX, maxX := max(p.X-1, 0), min(p.X+1, s.width-1)
	minY, maxY := max(p.Y-1, 0), min(p.Y+1, s.height-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			qIdx := y*s.width + x
			if qIdx == pIdx || st.isVisited(qIdx) {
				continue
			}
			q := models.Point{X: x, Y: y}
			c := base + s.model.Cost(p, q)
			if c >= st.cost[qIdx] {
				continue
			}
			// the queue finds q through its current cost, so remove before updating
			if st.parent[qIdx] != noParent {
				st.queue.Remove(qIdx)
			}
			st.cost[qIdx] = c
			st.parent[qIdx] = int32(pIdx)
			st.queue.Push(qIdx)
		}
	}
}

// Visited reports whether p has been finalized by the current search.
func (s *Scissors) Visited(p models.Point) bool {
	if s.state == nil || !p.In(s.width, s.height) {
		return false
	}
	return s.state.isVisited(p.Index(s.width))
}

// Cost returns the best known cost from the anchor to p (+Inf if unknown).
// The value is final once Visited(p) holds.
func (s *Scissors) Cost(p models.Point) float64 {
	if s.state == nil || !p.In(s.width, s.height) {
		return math.Inf(1)
	}
	return s.state.cost[p.Index(s.width)]
}

// Parent returns the predecessor of p in the shortest-path tree.
func (s *Scissors) Parent(p models.Point) (models.Point, bool) {
	if s.state == nil || !p.In(s.width, s.height) {
		return models.Point{}, false
	}
	return s.state.parentOf(p)
}

// PathTo runs the search until target is finalized and returns the shortest
// path from the anchor to target, both included. Work done for earlier
// queries against the same anchor is reused.
func (s *Scissors) PathTo(target models.Point) ([]models.Point, error) {
	if s.state == nil {
		return nil, ErrNoAnchor
	}
	if !target.In(s.width, s.height) {
		return nil, &OutOfBoundsError{Point: target, Width: s.width, Height: s.height}
	}

	for !s.Visited(target) {
		steps, err := s.DoWork(0)
		if err != nil {
			return nil, err
		}
		if len(steps) == 0 {
			return nil, ErrUnreachable
		}
	}
	return s.trace(target), nil
}

// trace follows parent pointers from a visited pixel back to the anchor and
// returns the reversed chain.
func (s *Scissors) trace(target models.Point) []models.Point {
	var path []models.Point
	p, ok := target, true
	for ok {
		path = append(path, p)
		p, ok = s.state.parentOf(p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Train adapts the cost model to the path that currently leads to p, which
// should have been finalized. It returns false when the path is too short to
// train on; the model is then left unchanged.
//
// The new costs apply to searches started by later SetPoint calls. Costs
// already stored for the current anchor are not recomputed.
func (s *Scissors) Train(p models.Point) (bool, error) {
	if s.state == nil {
		return false, ErrNoAnchor
	}
	if !p.In(s.width, s.height) {
		return false, &OutOfBoundsError{Point: p, Width: s.width, Height: s.height}
	}

	samples := s.trainer.CollectSamples(p, s.state.parentOf)
	trained := s.trainer.Train(s.model, samples)
	s.logger.Debug("training", "samples", len(samples), "trained", trained)
	return trained, nil
}

// Trained reports whether the cost model currently uses trained histograms.
func (s *Scissors) Trained() bool {
	return s.model != nil && s.model.Trained()
}

// ResetTraining returns the cost model to its untrained state.
func (s *Scissors) ResetTraining() {
	if s.model != nil {
		s.model.Reset()
	}
}
