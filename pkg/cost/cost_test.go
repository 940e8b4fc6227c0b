package cost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livewire/internal/models"
	"livewire/internal/testimage"
	"livewire/pkg/features"
)

func edgeModel(t *testing.T, w, h, col int) *Model {
	t.Helper()
	set, err := features.Extract(testimage.VerticalEdge(w, h, col), w, h, 2)
	require.NoError(t, err)
	return NewModel(set)
}

// columnChain returns a parent function walking up column x towards row 0.
func columnChain(x int) ParentFunc {
	return func(p models.Point) (models.Point, bool) {
		if p.Y == 0 {
			return models.Point{}, false
		}
		return models.Pt(x, p.Y-1), true
	}
}

func TestIndexQuantization(t *testing.T) {
	assert.Equal(t, 0, Index(256, 0))
	assert.Equal(t, 255, Index(256, 1))
	assert.Equal(t, 128, Index(256, 0.5))
	assert.Equal(t, 0, Index(256, -3))
	assert.Equal(t, 255, Index(256, 7))
}

func TestBlurPreservesConstant(t *testing.T) {
	in := []float64{0.7, 0.7, 0.7, 0.7, 0.7, 0.7}
	out := Blur(in)
	for i, v := range out {
		assert.InDelta(t, 0.7, v, 1e-12, "bucket %d", i)
	}
}

func TestBuildHistogramInvertsCounts(t *testing.T) {
	grid := features.NewGrid(4, 1)
	samples := []models.Point{models.Pt(0, 0), models.Pt(1, 0), models.Pt(2, 0)}

	h := BuildHistogram(samples, grid, 8)
	require.Len(t, h, 8)

	// all samples land in bucket 0, which drops to 0 before smoothing
	assert.InDelta(t, 0.6, h[0], 1e-12)
	assert.InDelta(t, 0.75, h[1], 1e-12)
	assert.InDelta(t, 0.95, h[2], 1e-12)
	for i := 3; i < 8; i++ {
		assert.InDelta(t, 1.0, h[i], 1e-12, "bucket %d", i)
	}
}

func TestBlendStatic(t *testing.T) {
	h := Histogram{1, 1, 1, 1}
	BlendStatic(h, 16, 32)
	assert.InDeltaSlice(t, []float64{1, 0.875, 0.75, 0.625}, []float64(h), 1e-12)

	h = Histogram{1, 1, 1, 1}
	BlendStatic(h, 32, 32)
	assert.Equal(t, Histogram{1, 1, 1, 1}, h)
}

func TestStaticCostOnVerticalEdge(t *testing.T) {
	m := edgeModel(t, 5, 5, 2)

	assert.InDelta(t, 0, m.Cost(models.Pt(2, 1), models.Pt(2, 2)), 1e-9)
	assert.InDelta(t, 0.43, m.Cost(models.Pt(2, 0), models.Pt(2, 1)), 1e-9)
	assert.InDelta(t, 0.86+0.11*2.0/3, m.Cost(models.Pt(2, 2), models.Pt(3, 2)), 1e-9)

	diag := 0.43*math.Sqrt2/2 + 0.43 + 0.11*0.5
	assert.InDelta(t, diag, m.Cost(models.Pt(2, 2), models.Pt(3, 3)), 1e-9)
}

func TestCollectSamples(t *testing.T) {
	tr := NewTrainer(DefaultTrainerOptions())

	long := tr.CollectSamples(models.Pt(3, 50), columnChain(3))
	assert.Len(t, long, 32)
	assert.Equal(t, models.Pt(3, 50), long[0])
	assert.Equal(t, models.Pt(3, 19), long[31])

	short := tr.CollectSamples(models.Pt(3, 2), columnChain(3))
	assert.Equal(t, []models.Point{models.Pt(3, 2), models.Pt(3, 1), models.Pt(3, 0)}, short)
}

func TestTrainSkipsWithFewSamples(t *testing.T) {
	m := edgeModel(t, 10, 10, 4)
	tr := NewTrainer(DefaultTrainerOptions())

	samples := tr.CollectSamples(models.Pt(4, 6), columnChain(4))
	require.Len(t, samples, 7)

	assert.False(t, tr.Train(m, samples))
	assert.False(t, m.Trained())
	assert.Nil(t, m.Histograms())
}

func TestTrainInstallsHistograms(t *testing.T) {
	m := edgeModel(t, 10, 10, 4)
	opts := DefaultTrainerOptions()
	tr := NewTrainer(opts)

	samples := tr.CollectSamples(models.Pt(4, 9), columnChain(4))
	require.Len(t, samples, 10)
	require.True(t, tr.Train(m, samples))
	require.True(t, m.Trained())

	h := m.Histograms()
	assert.Len(t, h.Edge, opts.EdgeGranularity)
	assert.Len(t, h.Gradient, opts.GradGranularity)
	assert.Len(t, h.Inside, opts.InsideGranularity)
	assert.Len(t, h.Outside, opts.OutsideGranularity)

	// the traced greyscale value (bright) is cheaper than an untraced one
	assert.Less(t, h.Edge.Lookup(1), h.Edge.Lookup(0.5))
}

func TestTrainReplacesWholesale(t *testing.T) {
	tr := NewTrainer(DefaultTrainerOptions())

	a := edgeModel(t, 10, 10, 4)
	require.True(t, tr.Train(a, tr.CollectSamples(models.Pt(1, 9), columnChain(1))))
	require.True(t, tr.Train(a, tr.CollectSamples(models.Pt(4, 9), columnChain(4))))

	b := edgeModel(t, 10, 10, 4)
	require.True(t, tr.Train(b, tr.CollectSamples(models.Pt(4, 9), columnChain(4))))

	assert.Equal(t, b.Histograms(), a.Histograms())
}

func TestTrainedCostNeverExceedsStatic(t *testing.T) {
	m := edgeModel(t, 10, 10, 4)
	tr := NewTrainer(DefaultTrainerOptions())
	require.True(t, tr.Train(m, tr.CollectSamples(models.Pt(4, 9), columnChain(4))))

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			p := models.Pt(x, y)
			for _, q := range []models.Point{models.Pt(x+1, y), models.Pt(x, y+1), models.Pt(x+1, y+1)} {
				if !q.In(10, 10) {
					continue
				}
				c := m.Cost(p, q)
				assert.LessOrEqual(t, c, m.StaticCost(p, q))
				assert.GreaterOrEqual(t, c, 0.0)
			}
		}
	}

	m.Reset()
	assert.False(t, m.Trained())
	assert.Equal(t, m.StaticCost(models.Pt(0, 0), models.Pt(1, 1)), m.Cost(models.Pt(0, 0), models.Pt(1, 1)))
}

// diagonalChain returns a parent function walking down the main diagonal.
func diagonalChain(p models.Point) (models.Point, bool) {
	if p.X == 0 || p.Y == 0 {
		return models.Point{}, false
	}
	return models.Pt(p.X-1, p.Y-1), true
}

func TestTrainGradientOnDiagonalSteps(t *testing.T) {
	const n = 40
	buf := testimage.FromFunc(n, n, func(x, _ int) uint8 { return uint8(x * x / 7) })
	set, err := features.Extract(buf, n, n, 2)
	require.NoError(t, err)
	m := NewModel(set)

	tr := NewTrainer(DefaultTrainerOptions())
	samples := tr.CollectSamples(models.Pt(32, 32), diagonalChain)
	require.Len(t, samples, 32)
	require.True(t, tr.Train(m, samples))

	h := m.Histograms().Gradient
	for i := 0; i+1 < len(samples); i++ {
		p, q := samples[i+1], samples[i]
		require.True(t, p.IsDiagonal(q))

		scaled := set.Gradient.AtPoint(q) * math.Sqrt2 / 2
		assert.Less(t, h.Lookup(scaled), 1.0, "step %v -> %v", p, q)
	}
}

func TestBuildHistogramValuesMatchesGridSamples(t *testing.T) {
	grid := features.NewGrid(3, 1)
	grid.Data = []float64{0.2, 0.2, 0.9}
	samples := []models.Point{models.Pt(0, 0), models.Pt(1, 0), models.Pt(2, 0)}

	assert.Equal(t, BuildHistogram(samples, grid, 16), BuildHistogramValues([]float64{0.2, 0.2, 0.9}, 16))
}
