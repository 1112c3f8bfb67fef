package composer

import (
	"go.uber.org/zap"
)

// debugLog reports per-frame stats. Only called in debug mode.
func (e *Editor) debugLog(stats FrameStats) {
	e.log.Debug("frame",
		zap.Uint64("generation", e.Session.Generation()),
		zap.Int("layers", stats.Layers),
		zap.Int("drawn", stats.Drawn),
		zap.Int("skipped", stats.Skipped),
		zap.Float64("scale", stats.Scale),
		zap.Float64("viewport_w", stats.Viewport.Width),
		zap.Float64("viewport_h", stats.Viewport.Height),
		zap.Duration("took", stats.Duration),
	)
	if stats.Skipped > 0 {
		e.log.Debug("images pending",
			zap.Int("skipped", stats.Skipped),
			zap.Int("decoding", e.Assets.Pending()))
	}
}

// debugMaxLayers is the layer count above which debug mode warns.
const debugMaxLayers = 1000

func (e *Editor) debugCheckLayerCount() {
	if n := e.Session.LayerCount(); n > debugMaxLayers {
		e.log.Warn("layer count exceeds threshold",
			zap.Int("layers", n), zap.Int("threshold", debugMaxLayers))
	}
}
