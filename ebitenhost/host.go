// Package ebitenhost runs a composer.Editor in an Ebitengine window.
package ebitenhost

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/phanxgames/composer"
)

// Options configures a Host.
type Options struct {
	Title     string
	Width     int
	Height    int
	Resizable bool

	// NudgeStep is the model-space distance an arrow key moves the
	// selection. Defaults to 1.
	NudgeStep float64
	// Overlay draws the FPS and selection readout.
	Overlay bool
	// SnapshotDir receives labeled captures. Defaults to composer.SnapshotDir.
	SnapshotDir string
	// Script is run from Update. Run returns once it has finished and its
	// last snapshot is written.
	Script *composer.ScriptRunner

	Logger *zap.Logger
}

// Host implements ebiten.Game around an editor.
type Host struct {
	editor  *composer.Editor
	surface *Surface
	overlay *overlay
	opts    Options
	log     *zap.Logger

	attached      bool
	pointerInside bool
	pressed       bool
	width, height int
}

// errScriptDone ends the game loop after a script run.
var errScriptDone = errors.New("ebitenhost: script done")

// New creates a host. The editor's surface is attached on the first Draw.
func New(e *composer.Editor, fonts *FontBook, opts Options) *Host {
	if opts.NudgeStep <= 0 {
		opts.NudgeStep = 1
	}
	if opts.SnapshotDir == "" {
		opts.SnapshotDir = composer.SnapshotDir
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Host{
		editor:  e,
		surface: NewSurface(fonts),
		opts:    opts,
		log:     log.Named("host"),
	}
	if opts.Overlay {
		h.overlay = newOverlay()
	}
	if opts.Script != nil {
		e.SetScriptRunner(opts.Script)
	}
	return h
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))

	if !h.editor.Update(dt) {
		h.handlePointer()
	}
	h.handleKeys()

	if h.overlay != nil {
		h.overlay.update(float64(dt), h.editor)
	}
	if h.opts.Script != nil && h.opts.Script.Done() &&
		!h.editor.Scheduler.Pending() && h.editor.PendingSnapshots() == 0 {
		return errScriptDone
	}
	return nil
}

// Draw implements ebiten.Game. The screen is not cleared between frames;
// the editor redraws it only when a frame request is pending.
func (h *Host) Draw(screen *ebiten.Image) {
	h.surface.Bind(screen)
	if !h.attached {
		h.attached = true
		h.editor.AttachSurface(h.surface)
	}
	h.editor.Frames.Fire()

	if labels := h.editor.TakeSnapshots(); len(labels) > 0 {
		paths, err := composer.WriteSnapshots(h.opts.SnapshotDir, readScreen(screen), labels)
		if err != nil {
			h.log.Warn("snapshot failed", zap.Error(err))
		}
		for _, p := range paths {
			h.log.Info("snapshot written", zap.String("path", p))
		}
	}

	if h.overlay != nil {
		h.overlay.draw(screen)
	}
}

// Layout implements ebiten.Game. The viewport follows the window size.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.width, h.height = outsideWidth, outsideHeight
		h.editor.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it closes or the script ends.
func (h *Host) Run() error {
	ebiten.SetWindowSize(h.opts.Width, h.opts.Height)
	ebiten.SetWindowTitle(h.opts.Title)
	if h.opts.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetScreenClearedEveryFrame(false)

	defer func() {
		h.editor.DetachSurface()
		h.surface.Unbind()
	}()
	err := ebiten.RunGame(h)
	if errors.Is(err, errScriptDone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ebitenhost: %w", err)
	}
	return nil
}

func (h *Host) handlePointer() {
	c := h.editor.Controller
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	inside := mx >= 0 && my >= 0 && mx < h.width && my < h.height

	if h.pointerInside && !inside {
		c.PointerLeave()
		h.pressed = false
	}
	h.pointerInside = inside
	if !inside {
		return
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		h.pressed = true
		c.PointerDown(x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if h.pressed {
			c.PointerMove(x, y)
		}
		h.pressed = false
		c.PointerUp()
	case h.pressed:
		c.PointerMove(x, y)
	}
}

func (h *Host) handleKeys() {
	c := h.editor.Controller
	s := h.editor.Session
	step := h.opts.NudgeStep
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step *= 10
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		c.Nudge(-step, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		c.Nudge(step, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		c.Nudge(0, -step)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		c.Nudge(0, step)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if id, ok := s.SelectedLayerID(); ok {
			s.RemoveLayer(id)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.ClearSelection()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		id := s.AddTextLayer("Text", composer.WithPosition(composer.Position{Top: 100, Left: 100}))
		s.SelectLayer(id)
	}
}
