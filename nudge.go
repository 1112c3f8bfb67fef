package composer

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// nudgeAnim eases the selected layer toward a target position.
type nudgeAnim struct {
	layer     string
	tweenTop  *gween.Tween
	tweenLeft *gween.Tween
	doneTop   bool
	doneLeft  bool
	target    Position
}

// Nudge moves the selected layer by (dx, dy) model units. With a non-zero
// NudgeDuration the move is eased over several Update calls; repeated
// nudges accumulate onto the pending target.
func (c *Controller) Nudge(dx, dy float64) {
	sel, ok := c.session.SelectedLayer()
	if !ok {
		return
	}
	id := sel.LayerID()
	from := sel.Base().Position

	target := Position{Top: from.Top + dy, Left: from.Left + dx}
	if c.nudge != nil && c.nudge.layer == id {
		target = Position{Top: c.nudge.target.Top + dy, Left: c.nudge.target.Left + dx}
	}

	if c.nudgeDuration <= 0 {
		c.nudge = nil
		c.session.UpdateLayerPosition(id, At(target.Top, target.Left))
		return
	}

	c.nudge = &nudgeAnim{
		layer:     id,
		tweenTop:  gween.New(float32(from.Top), float32(target.Top), c.nudgeDuration, ease.OutCubic),
		tweenLeft: gween.New(float32(from.Left), float32(target.Left), c.nudgeDuration, ease.OutCubic),
		target:    target,
	}
}

// Nudging reports whether a nudge animation is running.
func (c *Controller) Nudging() bool { return c.nudge != nil }

func (c *Controller) updateNudge(dt float32) {
	n := c.nudge
	if n == nil {
		return
	}
	if _, ok := c.session.Layer(n.layer); !ok {
		c.nudge = nil
		return
	}

	var patch PositionPatch
	if !n.doneTop {
		val, done := n.tweenTop.Update(dt)
		top := float64(val)
		n.doneTop = done
		if done {
			top = n.target.Top
		}
		patch.Top = &top
	}
	if !n.doneLeft {
		val, done := n.tweenLeft.Update(dt)
		left := float64(val)
		n.doneLeft = done
		if done {
			left = n.target.Left
		}
		patch.Left = &left
	}
	c.session.UpdateLayerPosition(n.layer, patch)

	if n.doneTop && n.doneLeft {
		c.nudge = nil
	}
}
