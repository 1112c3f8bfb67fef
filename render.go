package composer

import (
	"time"
)

// FrameStats describes one RenderFrame pass.
type FrameStats struct {
	Layers   int           // layers visited
	Drawn    int           // layers that produced drawing calls
	Skipped  int           // image layers whose bitmap was not ready
	Viewport Dimension     // viewport the frame was fitted to
	Scale    float64       // viewport transform scale
	Duration time.Duration // wall time spent issuing drawing calls
}

var (
	backgroundColor = colorOrBlack(BackgroundColor)
	selectionColor  = colorOrBlack(SelectionColor)
)

// RenderFrame repaints the whole viewport from the session. Image layers
// whose bitmap is not in cache yet are skipped for this frame and their
// decode is started. A detached surface yields ErrStaleSurface and nothing
// is drawn.
func RenderFrame(session *EditSession, cache *AssetCache, surface Surface) error {
	_, err := RenderFrameStats(session, cache, surface)
	return err
}

// RenderFrameStats is RenderFrame that also reports what was drawn.
func RenderFrameStats(session *EditSession, cache *AssetCache, surface Surface) (FrameStats, error) {
	if surface == nil || surface.Detached() {
		return FrameStats{}, ErrStaleSurface
	}
	t0 := time.Now()

	vp := session.ViewportDimension()
	project := session.ProjectDimension()

	// Reset whatever the previous frame or host left behind, then clear in
	// device pixels.
	surface.SetIdentity()
	surface.ClearRect(0, 0, vp.Width, vp.Height)

	// From here on everything is drawn in model space.
	t := ComputeTransform(project, vp)
	surface.Translate(t.TranslateX, t.TranslateY)
	surface.Scale(t.Scale, t.Scale)

	surface.FillRect(0, 0, project.Width, project.Height, backgroundColor)

	stats := FrameStats{Viewport: vp, Scale: t.Scale}
	selected, hasSelection := session.SelectedLayerID()

	for _, l := range session.paintOrder() {
		stats.Layers++
		switch l := l.(type) {
		case *TextLayer:
			drawTextLayer(surface, l)
			stats.Drawn++
		case *ImageLayer:
			if drawImageLayer(surface, cache, l) {
				stats.Drawn++
			} else {
				stats.Skipped++
			}
		}
		if hasSelection && l.LayerID() == selected {
			drawSelection(surface, l.Base())
		}
	}

	stats.Duration = time.Since(t0)
	return stats, nil
}

// pushLayerTransform saves the surface state and moves the origin to the
// layer's center, rotated by the layer's rotation.
func pushLayerTransform(s Surface, b *LayerBase) {
	s.Save()
	cx, cy := b.Bounds().Center()
	s.Translate(cx, cy)
	s.Rotate(b.RotationRadians())
}

func drawTextLayer(s Surface, l *TextLayer) {
	pushLayerTransform(s, &l.LayerBase)
	s.DrawText(l.Text, 0, 0, TextStyle{
		Font:  FontSpec{Family: l.FontFamily, Size: l.FontSize},
		Color: colorOrBlack(l.FontColor),
		Align: TextAlignCenter,
	})
	s.Restore()
}

// drawImageLayer reports whether the bitmap was available.
func drawImageLayer(s Surface, cache *AssetCache, l *ImageLayer) bool {
	if cache == nil {
		return false
	}
	img, ok := cache.Get(l.ImageSource)
	if !ok {
		// No placeholder; the frame after the decode settles draws it.
		cache.EnsureLoaded(l.ImageSource)
		return false
	}
	pushLayerTransform(s, &l.LayerBase)
	w, h := l.Dimension.Width, l.Dimension.Height
	s.DrawImage(img, -w/2, -h/2, w, h)
	s.Restore()
	return true
}

// drawSelection outlines the layer's axis-aligned box. The outline ignores
// the layer's rotation.
func drawSelection(s Surface, b LayerBase) {
	r := b.Bounds()
	s.Save()
	s.StrokeDashedRect(r.X, r.Y, r.Width, r.Height, StrokeStyle{
		Color: selectionColor,
		Width: SelectionStrokeWidth,
		Dash:  SelectionDash,
	})
	s.Restore()
}
