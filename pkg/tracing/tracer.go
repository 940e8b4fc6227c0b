// Package tracing runs livewire sessions in batch: every job loads an image,
// replays the anchor clicks through a Session and records the resulting
// boundary.
package tracing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"livewire/internal/logging"
	"livewire/internal/models"
	"livewire/pkg/features"
	"livewire/pkg/imageio"
	"livewire/pkg/livewire"
	"livewire/pkg/scissors"
	"livewire/pkg/visualization"
)

// Params holds the batch configuration.
type Params struct {
	// Scissors configures the engine created for each job
	Scissors scissors.Options

	// Session configures the click replay
	Session livewire.Options

	// NumCores bounds the number of jobs processed concurrently
	NumCores int

	// SaveIntermediaryResults writes the feature grids and a path overlay
	// per job under IntermediaryDir
	SaveIntermediaryResults bool
	IntermediaryDir         string
}

// Tracer processes jobs. It is safe for concurrent use: every job gets its
// own engine.
type Tracer struct {
	params Params
	logger *logging.Logger
}

// NewTracer creates a tracer. A nil logger discards everything.
func NewTracer(params Params, logger *logging.Logger) *Tracer {
	if params.NumCores < 1 {
		params.NumCores = 1
	}
	if logger == nil {
		logger = logging.Noop()
	}
	return &Tracer{params: params, logger: logger}
}

// Process loads the job image and traces its boundary.
func (t *Tracer) Process(ctx context.Context, job Job) (Result, error) {
	if err := job.Validate(); err != nil {
		return Result{}, err
	}
	img, err := imageio.Load(job.Image)
	if err != nil {
		return Result{}, fmt.Errorf("job %q: %w", job.Name, err)
	}
	return t.ProcessImage(ctx, job, img)
}

// ProcessImage traces the boundary of job on an already decoded image.
func (t *Tracer) ProcessImage(ctx context.Context, job Job, img *imageio.Image) (Result, error) {
	start := time.Now()
	log := t.logger.WithJob(job.Name)
	log.Info("processing job", "anchors", len(job.Anchors), "width", img.Width, "height", img.Height)

	engine := scissors.New(t.params.Scissors)
	engine.SetLogger(log)
	if err := engine.SetDimensions(img.Width, img.Height); err != nil {
		return Result{}, fmt.Errorf("job %q: %w", job.Name, err)
	}
	if err := engine.SetData(img.Pix); err != nil {
		return Result{}, fmt.Errorf("job %q: %w", job.Name, err)
	}

	session := livewire.NewSession(engine, t.params.Session)
	session.SetLogger(log)
	if err := t.replay(ctx, session, job); err != nil {
		return Result{}, fmt.Errorf("job %q: %w", job.Name, err)
	}

	path, err := session.Finish()
	if err != nil {
		return Result{}, fmt.Errorf("job %q: %w", job.Name, err)
	}

	res := Result{
		Name:            job.Name,
		Path:            path,
		Closed:          session.Closed(),
		Cost:            pathCost(engine, path.Points),
		TrainedSegments: session.TrainedSegments(),
		Metrics:         calculateMetrics(engine.Features(), path.Points),
		Elapsed:         time.Since(start),
	}

	if t.params.SaveIntermediaryResults {
		if err := t.saveIntermediaryResults(job.Name, engine.Features(), img, path); err != nil {
			log.Warn("failed to save intermediary results", "error", err)
		}
	}

	log.Info("job finished",
		"points", res.Metrics.Length,
		"closed", res.Closed,
		"cost", res.Cost,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// replay clicks the job anchors in order and closes the boundary if asked.
func (t *Tracer) replay(ctx context.Context, session *livewire.Session, job Job) error {
	if err := session.Start(job.Anchors[0]); err != nil {
		return err
	}

	for _, a := range job.Anchors[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		closed, err := session.Click(a)
		if err != nil {
			return err
		}
		if closed {
			return nil
		}
	}

	p := session.Path()
	if !job.Close || len(p.ControlPoints) < 2 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	closed, err := session.Click(p.Points[0])
	if err != nil {
		return err
	}
	if !closed {
		return fmt.Errorf("boundary did not close at %v", p.Points[0])
	}
	return nil
}

// RunBatch processes jobs with at most NumCores running at once. Results are
// returned in job order; the first failure cancels the remaining jobs.
func (t *Tracer) RunBatch(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.params.NumCores)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := t.Process(ctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func pathCost(engine *scissors.Scissors, path []models.Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += engine.Model().Cost(path[i-1], path[i])
	}
	return total
}

// saveIntermediaryResults writes the feature grids and the path overlay of a job
func (t *Tracer) saveIntermediaryResults(name string, set *features.Set, img *imageio.Image, path models.Path) error {
	dir := filepath.Join(t.params.IntermediaryDir, name)
	if err := visualization.NewViewer(set).SaveFeatureSet(dir); err != nil {
		return fmt.Errorf("failed to save feature grids: %w", err)
	}

	overlay := visualization.PathOverlay(img.RGBA(), path)
	if err := visualization.SavePNG(overlay, filepath.Join(dir, "overlay.png")); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}
