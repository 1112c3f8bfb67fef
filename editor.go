package composer

import (
	"go.uber.org/zap"
)

// EditorOptions configures NewEditor. Zero values select defaults.
type EditorOptions struct {
	// Project is the document size. Defaults to 800x600.
	Project Dimension
	// Viewport is the initial viewport size; hosts update it on resize.
	Viewport Dimension

	Loader               AssetLoader
	MaxConcurrentDecodes int
	// NudgeDuration is the keyboard nudge animation length in seconds.
	NudgeDuration float32

	Logger  *zap.Logger
	Metrics *Metrics
	// Debug logs per-frame stats.
	Debug bool
}

// Editor wires one EditSession to its asset cache, interaction controller
// and redraw scheduler. Hosts drive it with Update once per tick and
// Frames.Fire once per display frame, both from the same goroutine.
type Editor struct {
	Session    *EditSession
	Assets     *AssetCache
	Controller *Controller
	Scheduler  *Scheduler
	Frames     *FrameLoop

	surface   Surface
	lastStats FrameStats

	runner        *ScriptRunner
	snapshotQueue []string

	debug   bool
	log     *zap.Logger
	metrics *Metrics
}

// NewEditor creates an editor for an empty project and requests the first
// frame.
func NewEditor(opts EditorOptions) *Editor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	session := NewEditSession(opts.Project,
		WithLogger(log.Named("session")),
		WithViewport(opts.Viewport))

	e := &Editor{
		Session: session,
		Assets: NewAssetCache(AssetCacheOptions{
			Loader:        opts.Loader,
			MaxConcurrent: opts.MaxConcurrentDecodes,
			Logger:        log.Named("assets"),
			Metrics:       opts.Metrics,
		}),
		Controller: NewController(session, ControllerOptions{
			NudgeDuration: opts.NudgeDuration,
			Logger:        log.Named("input"),
		}),
		Frames:  NewFrameLoop(),
		debug:   opts.Debug,
		log:     log,
		metrics: opts.Metrics,
	}
	e.Scheduler = NewScheduler(session, e.Frames, e.renderFrame, SchedulerOptions{
		Logger:  log.Named("scheduler"),
		Metrics: opts.Metrics,
	})
	e.Assets.OnLoaded(func(string, error) { e.Scheduler.Invalidate() })
	e.Scheduler.Start()
	return e
}

// AttachSurface sets the drawing target and requests a frame.
func (e *Editor) AttachSurface(s Surface) {
	e.surface = s
	e.Scheduler.Invalidate()
}

// DetachSurface drops the drawing target. Frames that fire while detached
// are skipped.
func (e *Editor) DetachSurface() {
	e.surface = nil
}

// Resize records a new viewport size.
func (e *Editor) Resize(width, height float64) {
	e.Session.SetViewportDimension(Dimension{Width: width, Height: height})
}

// Update runs one loop iteration: scripted steps, injected or animated
// input, finished decodes and the redraw check. It reports whether an
// injected pointer event was consumed.
func (e *Editor) Update(dt float32) bool {
	if e.runner != nil {
		e.runner.step(e)
	}
	injected := e.Controller.Update(dt)
	e.Assets.Pump()
	e.Scheduler.Tick()
	e.metrics.setLayers(e.Session.LayerCount())
	if e.debug {
		e.debugCheckLayerCount()
	}
	return injected
}

// LastFrame returns the stats of the most recent drawn frame.
func (e *Editor) LastFrame() FrameStats { return e.lastStats }

// SetScriptRunner attaches a script runner; its steps run from Update.
func (e *Editor) SetScriptRunner(r *ScriptRunner) {
	e.runner = r
}

// RequestSnapshot queues a labeled capture of the next drawn frame. Hosts
// collect labels with TakeSnapshots after firing frames.
func (e *Editor) RequestSnapshot(label string) {
	e.snapshotQueue = append(e.snapshotQueue, label)
	e.Scheduler.Invalidate()
}

// TakeSnapshots returns and clears the queued snapshot labels.
func (e *Editor) TakeSnapshots() []string {
	if len(e.snapshotQueue) == 0 {
		return nil
	}
	out := e.snapshotQueue
	e.snapshotQueue = nil
	return out
}

// PendingSnapshots returns the number of queued snapshot labels.
func (e *Editor) PendingSnapshots() int { return len(e.snapshotQueue) }

// Close stops the scheduler and cancels in-flight decodes.
func (e *Editor) Close() {
	e.Scheduler.Stop()
	e.Assets.Close()
	e.surface = nil
}

func (e *Editor) renderFrame() error {
	stats, err := RenderFrameStats(e.Session, e.Assets, e.surface)
	if err != nil {
		return err
	}
	e.lastStats = stats
	e.metrics.observeFrame(stats)
	if e.debug {
		e.debugLog(stats)
	}
	return nil
}
