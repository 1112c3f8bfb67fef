package composer

import (
	"errors"

	"go.uber.org/zap"
)

// RenderFunc draws one frame.
type RenderFunc func() error

// SchedulerOptions configures NewScheduler.
type SchedulerOptions struct {
	Logger  *zap.Logger
	Metrics *Metrics
}

// Scheduler keeps at most one frame request pending and issues a new one
// whenever the session changes or the frame is invalidated out of band
// (an asset finished loading). A request made while another is pending
// cancels the older one, so a burst of mutations renders once.
type Scheduler struct {
	session *EditSession
	frames  FrameRequester
	render  RenderFunc

	pending      FrameHandle
	requestedGen uint64
	renderedGen  uint64
	rendered     int
	dirty        bool

	sub     Subscription
	started bool
	stopped bool

	log     *zap.Logger
	metrics *Metrics
}

// NewScheduler creates a stopped scheduler. Call Start to begin observing
// the session.
func NewScheduler(session *EditSession, frames FrameRequester, render RenderFunc, opts SchedulerOptions) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{
		session: session,
		frames:  frames,
		render:  render,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Start subscribes to session changes and requests the first frame.
func (s *Scheduler) Start() {
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.sub = s.session.Subscribe(func(Change) { s.request() })
	s.request()
}

// Tick compares the session generation with the last requested one and
// requests a frame if anything changed since. Hosts call it once per loop
// iteration; with the subscription in place it only catches changes made
// before Start.
func (s *Scheduler) Tick() {
	if !s.started || s.stopped {
		return
	}
	if s.dirty || s.session.Generation() != s.requestedGen {
		s.request()
	}
}

// Invalidate forces a new frame even though the session did not change.
func (s *Scheduler) Invalidate() {
	if s.stopped {
		return
	}
	s.dirty = true
	if s.started {
		s.request()
	}
}

// Stop cancels the pending frame and deregisters from the session. A frame
// callback that still fires afterwards is a no-op.
func (s *Scheduler) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.pending != 0 {
		s.frames.CancelFrame(s.pending)
		s.pending = 0
	}
	s.sub.Remove()
}

// Pending reports whether a frame request is outstanding.
func (s *Scheduler) Pending() bool { return s.pending != 0 }

// Rendered returns the number of frames drawn so far.
func (s *Scheduler) Rendered() int { return s.rendered }

// RenderedGeneration returns the session generation of the last drawn
// frame.
func (s *Scheduler) RenderedGeneration() uint64 { return s.renderedGen }

func (s *Scheduler) request() {
	if s.stopped {
		return
	}
	if s.pending != 0 {
		s.frames.CancelFrame(s.pending)
		s.metrics.frameCancelled()
	}
	s.requestedGen = s.session.Generation()
	s.dirty = false
	s.pending = s.frames.RequestFrame(s.fire)
}

func (s *Scheduler) fire() {
	s.pending = 0
	if s.stopped {
		s.log.Debug("frame fired after stop", zap.Error(ErrStaleSurface))
		return
	}

	gen := s.session.Generation()
	err := s.render()
	switch {
	case errors.Is(err, ErrStaleSurface):
		s.log.Debug("frame skipped", zap.Error(err))
		return
	case err != nil:
		s.log.Warn("frame failed", zap.Error(err))
		return
	}
	s.rendered++
	s.renderedGen = gen
	s.metrics.frameRendered()
}
