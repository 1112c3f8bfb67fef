package composer

import (
	"go.uber.org/zap"
)

// PointerState is the interaction controller's state.
type PointerState uint8

const (
	PointerIdle     PointerState = iota // no drag in progress
	PointerDragging                     // a layer was grabbed; moves translate it
)

func (s PointerState) String() string {
	if s == PointerDragging {
		return "dragging"
	}
	return "idle"
}

// ControllerOptions configures NewController.
type ControllerOptions struct {
	// NudgeDuration is how long a keyboard nudge animates, in seconds.
	// Zero applies nudges immediately.
	NudgeDuration float32
	Logger        *zap.Logger
}

// Controller turns viewport-space pointer events into hit tests and
// session mutations. It never writes session fields directly; every change
// goes through the mutation API.
//
// The drag anchor is kept in viewport space. Each move converts the
// viewport delta to model units with the current scale before applying it.
type Controller struct {
	session *EditSession

	state     PointerState
	dragLayer string
	anchorX   float64
	anchorY   float64

	nudge         *nudgeAnim
	nudgeDuration float32

	injectQueue []syntheticPointerEvent

	log *zap.Logger
}

// NewController creates an idle controller for session.
func NewController(session *EditSession, opts ControllerOptions) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		session:       session,
		nudgeDuration: opts.NudgeDuration,
		log:           opts.Logger,
	}
}

// State returns the current pointer state.
func (c *Controller) State() PointerState { return c.state }

// DragLayerID returns the id grabbed by the current drag.
func (c *Controller) DragLayerID() (string, bool) {
	return c.dragLayer, c.state == PointerDragging
}

// Anchor returns the last pointer position of the current drag in viewport
// space.
func (c *Controller) Anchor() (x, y float64, ok bool) {
	return c.anchorX, c.anchorY, c.state == PointerDragging
}

// Transform returns the viewport transform for the session's current
// dimensions. It is the same computation the render pipeline uses.
func (c *Controller) Transform() ViewportTransform {
	return ComputeTransform(c.session.ProjectDimension(), c.session.ViewportDimension())
}

// --- Hit testing ---

// HitTest returns a copy of the topmost layer under the viewport point.
func (c *Controller) HitTest(sx, sy float64) (Layer, bool) {
	l := c.hitTest(c.Transform().ToModel(sx, sy))
	if l == nil {
		return nil, false
	}
	return l.clone(), true
}

// hitTest scans layers in reverse paint order and returns the first whose
// box contains p. Boxes are axis-aligned: a rotated layer is hit-tested by
// its unrotated box.
func (c *Controller) hitTest(p Position) Layer {
	layers := c.session.paintOrder()
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].Base().Bounds().Contains(p.Left, p.Top) {
			return layers[i]
		}
	}
	return nil
}

// --- Pointer state machine ---

// PointerDown selects the topmost layer under (sx, sy) and starts dragging
// it, or clears the selection when nothing is hit.
func (c *Controller) PointerDown(sx, sy float64) {
	c.nudge = nil

	p := c.Transform().ToModel(sx, sy)
	hit := c.hitTest(p)
	if hit == nil {
		c.session.ClearSelection()
		c.reset()
		c.log.Debug("pointer down on empty canvas",
			zap.Float64("model_x", p.Left), zap.Float64("model_y", p.Top))
		return
	}

	id := hit.LayerID()
	c.session.SelectLayer(id)
	c.state = PointerDragging
	c.dragLayer = id
	c.anchorX, c.anchorY = sx, sy
	c.log.Debug("drag start", zap.String("layer", id),
		zap.Float64("model_x", p.Left), zap.Float64("model_y", p.Top))
}

// PointerMove translates the selected layer while dragging. It is a no-op
// when idle.
func (c *Controller) PointerMove(sx, sy float64) {
	if c.state != PointerDragging {
		return
	}
	sel, ok := c.session.SelectedLayer()
	if !ok {
		return
	}

	dx, dy := c.Transform().DeltaToModel(sx-c.anchorX, sy-c.anchorY)
	pos := sel.Base().Position
	c.session.UpdateLayerPosition(sel.LayerID(), At(pos.Top+dy, pos.Left+dx))
	c.anchorX, c.anchorY = sx, sy
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	if c.state == PointerDragging {
		c.log.Debug("drag end", zap.String("layer", c.dragLayer))
	}
	c.reset()
}

// PointerLeave ends a drag when the pointer exits the surface.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

func (c *Controller) reset() {
	c.state = PointerIdle
	c.dragLayer = ""
	c.anchorX, c.anchorY = 0, 0
}

// Update advances keyboard nudges by dt seconds and feeds at most one
// injected pointer event. It reports whether an injected event was
// consumed, in which case hosts skip real pointer input for this tick.
func (c *Controller) Update(dt float32) bool {
	injected := c.processInjectedInput()
	c.updateNudge(dt)
	return injected
}
