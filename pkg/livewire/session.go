// Package livewire drives a Scissors engine through a multi-anchor tracing
// interaction: the user places a first anchor, moves the cursor to preview
// the live segment, clicks to commit segments and finally closes or finishes
// the boundary.
package livewire

import (
	"errors"
	"fmt"

	"livewire/internal/logging"
	"livewire/internal/models"
	"livewire/pkg/features"
	"livewire/pkg/scissors"
	"livewire/pkg/snap"
)

var (
	// ErrNotStarted is returned by operations that need a first anchor.
	ErrNotStarted = errors.New("livewire: session not started")

	// ErrAlreadyFinished is returned when the boundary was closed or finished.
	ErrAlreadyFinished = errors.New("livewire: session already finished")
)

// Options configures a Session.
type Options struct {
	// CloseTolerance is the distance in pixels from the first anchor within
	// which a click closes the boundary
	CloseTolerance float64

	// SnapRadius moves clicks onto the nearest edge pixel within this
	// distance; 0 disables snapping
	SnapRadius float64

	// Train enables cost model training on every committed segment
	Train bool
}

// DefaultOptions returns the standard session configuration.
func DefaultOptions() Options {
	return Options{
		CloseTolerance: 5,
		Train:          true,
	}
}

// Session is one boundary being traced. It owns the engine's anchor while
// it is active and is not safe for concurrent use.
type Session struct {
	engine *scissors.Scissors
	opts   Options

	edges    *snap.EdgeIndex
	edgesFor *features.Set

	path     *models.Path
	started  bool
	closed   bool
	finished bool
	trained  int

	logger *logging.Logger
}

// NewSession creates a session over an engine that already holds image data.
func NewSession(engine *scissors.Scissors, opts Options) *Session {
	return &Session{
		engine: engine,
		opts:   opts,
		path:   &models.Path{},
		logger: logging.Noop(),
	}
}

// SetLogger replaces the session logger.
func (s *Session) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	s.logger = l
}

// Start drops any previous boundary and places the first anchor at p.
func (s *Session) Start(p models.Point) error {
	s.Reset()

	p = s.snap(p)
	if err := s.engine.SetPoint(p); err != nil {
		return fmt.Errorf("livewire: start at %v: %w", p, err)
	}
	s.path = models.NewPath(p)
	s.path.AddControlIndex(0)
	s.started = true
	s.logger.Debug("session started", "anchor", p.String())
	return nil
}

// Move returns the boundary the user would get by clicking at cursor: the
// committed path followed by the live segment from the current anchor.
func (s *Session) Move(cursor models.Point) ([]models.Point, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	seg, err := s.engine.PathTo(cursor)
	if err != nil {
		return nil, fmt.Errorf("livewire: live segment to %v: %w", cursor, err)
	}

	live := make([]models.Point, 0, s.path.Len()+len(seg)-1)
	live = append(live, s.path.Points...)
	return append(live, seg[1:]...), nil
}

// Click commits the live segment to p and makes p the new anchor. A click
// within CloseTolerance of the first anchor, once at least one segment is
// committed, closes the boundary instead and reports true.
func (s *Session) Click(p models.Point) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	p = s.snap(p)

	first := s.path.Point(0)
	if len(s.path.ControlPoints) > 1 && p.Distance(first) <= s.opts.CloseTolerance {
		if err := s.commit(first); err != nil {
			return false, err
		}
		s.closed = true
		s.finished = true
		s.logger.Debug("boundary closed", "points", s.path.Len())
		return true, nil
	}

	if err := s.commit(p); err != nil {
		return false, err
	}
	if err := s.engine.SetPoint(p); err != nil {
		return false, fmt.Errorf("livewire: anchor at %v: %w", p, err)
	}
	return false, nil
}

// commit appends the live segment to p and marks p as a control point.
func (s *Session) commit(p models.Point) error {
	seg, err := s.engine.PathTo(p)
	if err != nil {
		return fmt.Errorf("livewire: commit segment to %v: %w", p, err)
	}
	if len(seg) < 2 {
		return nil
	}
	s.path.AddPoints(seg[1:])
	s.path.AddControlIndex(s.path.Len() - 1)

	if s.opts.Train {
		ok, err := s.engine.Train(p)
		if err != nil {
			return fmt.Errorf("livewire: train on segment to %v: %w", p, err)
		}
		if ok {
			s.trained++
		}
	}
	s.logger.Debug("segment committed", "to", p.String(), "length", len(seg))
	return nil
}

// Finish ends the interaction and returns the committed boundary, open
// unless it was closed by Click.
func (s *Session) Finish() (models.Path, error) {
	if !s.started {
		return models.Path{}, ErrNotStarted
	}
	s.finished = true
	return *s.path.Clone(), nil
}

// Path returns a copy of the committed boundary.
func (s *Session) Path() models.Path {
	return *s.path.Clone()
}

// Closed reports whether the boundary was closed on its first anchor.
func (s *Session) Closed() bool { return s.closed }

// Finished reports whether Finish was called or the boundary was closed.
func (s *Session) Finished() bool { return s.finished }

// TrainedSegments returns how many committed segments trained the engine.
func (s *Session) TrainedSegments() int { return s.trained }

// Reset drops the boundary. Training already applied to the engine is kept.
func (s *Session) Reset() {
	s.path = &models.Path{}
	s.started = false
	s.closed = false
	s.finished = false
	s.trained = 0
}

func (s *Session) check() error {
	if !s.started {
		return ErrNotStarted
	}
	if s.finished {
		return ErrAlreadyFinished
	}
	return nil
}

// snap moves p onto the nearest edge pixel when snapping is enabled.
func (s *Session) snap(p models.Point) models.Point {
	if s.opts.SnapRadius <= 0 {
		return p
	}
	set := s.engine.Features()
	if set == nil {
		return p
	}
	if s.edgesFor != set {
		s.edges = snap.NewEdgeIndex(set)
		s.edgesFor = set
	}
	q, _ := s.edges.Nearest(p, s.opts.SnapRadius)
	return q
}
