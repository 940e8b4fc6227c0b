package cost

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"livewire/internal/models"
	"livewire/pkg/features"
)

// Histogram maps a quantized feature value in [0,1] to a trained cost in [0,1].
type Histogram []float64

// Index quantizes v into one of gran buckets.
func Index(gran int, v float64) int {
	idx := int(math.Round(float64(gran-1) * v))
	if idx < 0 {
		return 0
	}
	if idx >= gran {
		return gran - 1
	}
	return idx
}

// Lookup returns the trained cost for the raw feature value v.
func (h Histogram) Lookup(v float64) float64 {
	return h[Index(len(h), v)]
}

// BuildHistogram counts how often the samples hit each bucket of grid, then
// inverts the counts (1 - count/max) so that frequently traced values are
// cheap, and smooths the result with Blur.
func BuildHistogram(samples []models.Point, grid *features.Grid, gran int) Histogram {
	values := make([]float64, len(samples))
	for i, p := range samples {
		values[i] = grid.AtPoint(p)
	}
	return BuildHistogramValues(values, gran)
}

// BuildHistogramValues is BuildHistogram over feature values that were
// already read from the grids.
func BuildHistogramValues(values []float64, gran int) Histogram {
	counts := make([]float64, gran)
	for _, v := range values {
		counts[Index(gran, v)]++
	}

	maxVal := math.Max(1, floats.Max(counts))
	for i := range counts {
		counts[i] = 1 - counts[i]/maxVal
	}
	return Blur(counts)
}

// Blur smooths a histogram with a 5-tap kernel. The two outermost buckets on
// each side use truncated kernels. The input must hold at least 4 buckets.
func Blur(in []float64) Histogram {
	n := len(in)
	out := make(Histogram, n)

	out[0] = 0.4*in[0] + 0.6*in[1]
	out[1] = 0.25*in[0] + 0.4*in[1] + 0.25*in[2] + 0.1*in[3]
	for i := 2; i < n-2; i++ {
		out[i] = 0.05*in[i-2] + 0.25*in[i-1] + 0.4*in[i] + 0.25*in[i+1] + 0.05*in[i+2]
	}
	out[n-2] = 0.25*in[n-1] + 0.4*in[n-2] + 0.25*in[n-3] + 0.1*in[n-4]
	out[n-1] = 0.4*in[n-1] + 0.5*in[n-2] + 0.1*in[n-3]
	return out
}

// BlendStatic pulls a gradient histogram trained on few samples toward the
// untrained ramp, proportionally to the sample deficit.
func BlendStatic(h Histogram, have, need int) {
	if have >= need {
		return
	}
	gran := float64(len(h))
	deficit := float64(need - have)
	for i := range h {
		h[i] = math.Min(h[i], 1-float64(i)*deficit/(float64(need)*gran))
	}
}
