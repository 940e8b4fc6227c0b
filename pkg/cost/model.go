// Package cost implements the livewire edge cost model and its online
// training from user-traced paths.
package cost

import (
	"math"

	"livewire/internal/models"
	"livewire/pkg/features"
)

// Static weights of the untrained cost.
const (
	StaticGradientWeight  = 0.43
	StaticLaplaceWeight   = 0.43
	StaticDirectionWeight = 0.11
)

// Weights of the trained cost. The minor weight applies to the sum of the
// direction cost and the three trained side features.
const (
	TrainedGradientWeight = 0.3
	TrainedLaplaceWeight  = 0.3
	TrainedMinorWeight    = 0.1
)

// Histograms is the trained state of a Model.
type Histograms struct {
	// Edge is indexed by the greyscale value at the step origin
	Edge Histogram

	// Gradient is indexed by the (move-scaled) gradient cost at the step target
	Gradient Histogram

	// Inside and Outside are indexed by the side band values at the step origin
	Inside  Histogram
	Outside Histogram
}

// Model computes the traversal cost between adjacent pixels.
//
// Cost is a pure function of the feature set and the current histograms.
// Histograms change only through SetHistograms and Reset.
type Model struct {
	features *features.Set
	trained  *Histograms
}

// NewModel creates an untrained model over a feature set.
func NewModel(set *features.Set) *Model {
	return &Model{features: set}
}

// Features returns the feature set the model reads from.
func (m *Model) Features() *features.Set {
	return m.features
}

// Trained reports whether histograms are installed.
func (m *Model) Trained() bool {
	return m.trained != nil
}

// Histograms returns the installed histograms, or nil when untrained.
func (m *Model) Histograms() *Histograms {
	return m.trained
}

// SetHistograms replaces the trained state wholesale.
func (m *Model) SetHistograms(h *Histograms) {
	m.trained = h
}

// Reset drops the trained state.
func (m *Model) Reset() {
	m.trained = nil
}

// Cost returns the cost of stepping from p to its 8-neighbour q.
//
// Untrained: 0.43*gradient + 0.43*laplace + 0.11*direction, where the
// gradient term of a diagonal step is scaled by 1/sqrt(2).
//
// Trained: 0.3*trainedGradient + 0.3*laplace + 0.1*(direction + trainedEdge
// + trainedInside + trainedOutside), capped by the untrained cost.
//
// Because of the cap, training can only lower step costs. Steps whose
// features the user never traced keep their untrained cost rather than
// becoming more expensive, so training steers the search towards traced
// feature values but never pushes it away from anything.
func (m *Model) Cost(p, q models.Point) float64 {
	static, grad, lap, dir := m.static(p, q)
	if m.trained == nil {
		return static
	}

	set := m.features
	h := m.trained
	gradT := h.Gradient.Lookup(grad)
	edgeT := h.Edge.Lookup(set.Greyscale.AtPoint(p))
	insideT := h.Inside.Lookup(set.Inside.AtPoint(p))
	outsideT := h.Outside.Lookup(set.Outside.AtPoint(p))

	trained := TrainedGradientWeight*gradT + TrainedLaplaceWeight*lap +
		TrainedMinorWeight*(dir+edgeT+insideT+outsideT)
	return math.Min(static, trained)
}

// StaticCost returns the untrained cost regardless of the trained state.
func (m *Model) StaticCost(p, q models.Point) float64 {
	static, _, _, _ := m.static(p, q)
	return static
}

func (m *Model) static(p, q models.Point) (cost, grad, lap, dir float64) {
	set := m.features

	grad = m.gradientFeature(p, q)
	lap = set.Laplace.AtPoint(q)
	dir = set.DirectionCost(p, q)

	cost = StaticGradientWeight*grad + StaticLaplaceWeight*lap + StaticDirectionWeight*dir
	return cost, grad, lap, dir
}

// gradientFeature is the gradient cost at q, scaled by 1/sqrt(2) for
// diagonal steps. Training bins the same value the lookup uses.
func (m *Model) gradientFeature(p, q models.Point) float64 {
	grad := m.features.Gradient.AtPoint(q)
	if p.IsDiagonal(q) {
		grad *= math.Sqrt2 / 2
	}
	return grad
}
