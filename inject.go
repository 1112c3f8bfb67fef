package composer

type syntheticKind uint8

const (
	syntheticPress syntheticKind = iota
	syntheticMove
	syntheticRelease
	syntheticLeave
)

// syntheticPointerEvent is a queued pointer event in viewport coordinates,
// fed through the same state machine as real input.
type syntheticPointerEvent struct {
	kind   syntheticKind
	sx, sy float64
}

// InjectPress queues a pointer press at the given viewport coordinates.
// Events are consumed one per Update call.
func (c *Controller) InjectPress(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{kind: syntheticPress, sx: x, sy: y})
}

// InjectMove queues a pointer move with the button held.
func (c *Controller) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{kind: syntheticMove, sx: x, sy: y})
}

// InjectRelease queues a move to (x, y) followed by a release.
func (c *Controller) InjectRelease(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{kind: syntheticRelease, sx: x, sy: y})
}

// InjectLeave queues the pointer leaving the surface.
func (c *Controller) InjectLeave() {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{kind: syntheticLeave})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two updates.
func (c *Controller) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2
// linearly interpolated moves, and release at (toX, toY). Minimum frames
// is 2 (press + release).
func (c *Controller) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// PendingInjections returns the number of queued synthetic events.
func (c *Controller) PendingInjections() int { return len(c.injectQueue) }

// processInjectedInput pops one event and runs it. Returns true if an event
// was consumed, in which case real pointer input should be skipped this
// tick.
func (c *Controller) processInjectedInput() bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	switch evt.kind {
	case syntheticPress:
		c.PointerDown(evt.sx, evt.sy)
	case syntheticMove:
		c.PointerMove(evt.sx, evt.sy)
	case syntheticRelease:
		c.PointerMove(evt.sx, evt.sy)
		c.PointerUp()
	case syntheticLeave:
		c.PointerLeave()
	}
	return true
}
