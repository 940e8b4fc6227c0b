package tracing

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livewire/internal/models"
	"livewire/internal/testimage"
	"livewire/pkg/imageio"
	"livewire/pkg/livewire"
	"livewire/pkg/scissors"
)

func defaultParams(cores int) Params {
	return Params{
		Scissors: scissors.DefaultOptions(),
		Session:  livewire.DefaultOptions(),
		NumCores: cores,
	}
}

// writeSquare saves a 20x20 dark image with a bright square as PNG
func writeSquare(t *testing.T, dir string) string {
	t.Helper()
	img := &imageio.Image{Width: 20, Height: 20, Pix: testimage.Square(20, 20, 5, 5, 14, 14)}

	path := filepath.Join(dir, "square.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img.RGBA()))
	return path
}

func squareJob(name, image string) Job {
	return Job{
		Name:    name,
		Image:   image,
		Anchors: []models.Point{models.Pt(5, 5), models.Pt(14, 5), models.Pt(14, 14), models.Pt(5, 14)},
		Close:   true,
	}
}

func TestProcessClosesBoundary(t *testing.T) {
	image := writeSquare(t, t.TempDir())
	tr := NewTracer(defaultParams(1), nil)

	res, err := tr.Process(context.Background(), squareJob("square", image))
	require.NoError(t, err)

	assert.Equal(t, "square", res.Name)
	assert.True(t, res.Closed)
	require.Len(t, res.Path.ControlPoints, 5)
	assert.Equal(t, models.Pt(5, 5), res.Path.Points[0])
	assert.Equal(t, models.Pt(5, 5), res.Path.Points[res.Path.Len()-1])
	assert.Equal(t, res.Path.Len(), res.Metrics.Length)
	assert.Positive(t, res.TrainedSegments)
	assert.GreaterOrEqual(t, res.Cost, 0.0)
	assert.True(t, res.Metrics.EdgeFraction >= 0 && res.Metrics.EdgeFraction <= 1)
}

func TestProcessOpenBoundary(t *testing.T) {
	image := writeSquare(t, t.TempDir())
	tr := NewTracer(defaultParams(1), nil)

	job := squareJob("open", image)
	job.Close = false
	res, err := tr.Process(context.Background(), job)
	require.NoError(t, err)

	assert.False(t, res.Closed)
	last, ok := res.Path.Last()
	require.True(t, ok)
	assert.Equal(t, models.Pt(5, 14), last)
}

func TestProcessSingleAnchor(t *testing.T) {
	image := writeSquare(t, t.TempDir())
	tr := NewTracer(defaultParams(1), nil)

	res, err := tr.Process(context.Background(), Job{Name: "dot", Image: image, Anchors: []models.Point{models.Pt(3, 3)}, Close: true})
	require.NoError(t, err)
	assert.Equal(t, []models.Point{models.Pt(3, 3)}, res.Path.Points)
	assert.False(t, res.Closed)
	assert.Equal(t, 0.0, res.Cost)
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	image := writeSquare(t, dir)
	tr := NewTracer(defaultParams(1), nil)

	_, err := tr.Process(context.Background(), Job{Name: "none", Image: image})
	assert.Error(t, err)

	_, err = tr.Process(context.Background(), squareJob("missing", filepath.Join(dir, "missing.png")))
	assert.Error(t, err)

	job := squareJob("outside", image)
	job.Anchors = append(job.Anchors, models.Pt(50, 50))
	_, err = tr.Process(context.Background(), job)
	var oob *scissors.OutOfBoundsError
	assert.ErrorAs(t, err, &oob)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Process(ctx, squareJob("cancelled", image))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatchKeepsJobOrder(t *testing.T) {
	image := writeSquare(t, t.TempDir())
	tr := NewTracer(defaultParams(3), nil)

	jobs := []Job{squareJob("a", image), squareJob("b", image), squareJob("c", image), squareJob("d", image)}
	jobs[1].Close = false

	results, err := tr.RunBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, jobs[i].Name, res.Name)
	}
	assert.False(t, results[1].Closed)
	assert.Equal(t, results[0].Path, results[2].Path)
}

func TestRunBatchFailsOnFirstError(t *testing.T) {
	dir := t.TempDir()
	image := writeSquare(t, dir)
	tr := NewTracer(defaultParams(2), nil)

	jobs := []Job{squareJob("ok", image), squareJob("broken", filepath.Join(dir, "nope.png"))}
	results, err := tr.RunBatch(context.Background(), jobs)
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestIntermediaryResults(t *testing.T) {
	dir := t.TempDir()
	image := writeSquare(t, dir)

	params := defaultParams(1)
	params.SaveIntermediaryResults = true
	params.IntermediaryDir = filepath.Join(dir, "intermediary")
	tr := NewTracer(params, nil)

	_, err := tr.Process(context.Background(), squareJob("square", image))
	require.NoError(t, err)

	for _, name := range []string{"overlay.png", "feature_gradient.png", "feature_laplace.png"} {
		_, err := os.Stat(filepath.Join(params.IntermediaryDir, "square", name))
		assert.NoError(t, err, name)
	}
}

func TestWriteAndReadResults(t *testing.T) {
	image := writeSquare(t, t.TempDir())
	tr := NewTracer(defaultParams(1), nil)
	res, err := tr.Process(context.Background(), squareJob("square", image))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out", "results.yaml")
	require.NoError(t, WriteResults(out, []Result{res}))

	got, err := ReadResults(out)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, res.Name, got[0].Name)
	assert.Equal(t, res.Path, got[0].Path)
	assert.Equal(t, res.Closed, got[0].Closed)
	assert.Equal(t, res.Elapsed, got[0].Elapsed)
}
