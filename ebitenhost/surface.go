package ebitenhost

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/phanxgames/composer"
)

// whitePixelImage is scaled and tinted to fill rectangles. Created on
// first use; the host draws from a single goroutine.
var whitePixelImage *ebiten.Image

func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// Surface implements composer.Surface on an *ebiten.Image. The host binds
// the screen image before firing frames and unbinds it on shutdown.
type Surface struct {
	target *ebiten.Image
	ctm    composer.Affine
	stack  []composer.Affine

	fonts  *FontBook
	images map[image.Image]*ebiten.Image
}

// NewSurface creates an unbound surface.
func NewSurface(fonts *FontBook) *Surface {
	return &Surface{
		ctm:    composer.IdentityAffine,
		fonts:  fonts,
		images: make(map[image.Image]*ebiten.Image),
	}
}

// Bind sets the draw target.
func (s *Surface) Bind(target *ebiten.Image) { s.target = target }

// Unbind detaches the surface and releases converted bitmaps.
func (s *Surface) Unbind() {
	s.target = nil
	for k, img := range s.images {
		img.Deallocate()
		delete(s.images, k)
	}
}

// Detached implements composer.Surface.
func (s *Surface) Detached() bool { return s.target == nil }

// SetIdentity implements composer.Surface.
func (s *Surface) SetIdentity() { s.ctm = composer.IdentityAffine }

// Translate implements composer.Surface.
func (s *Surface) Translate(x, y float64) { s.ctm = s.ctm.Translated(x, y) }

// Rotate implements composer.Surface.
func (s *Surface) Rotate(radians float64) { s.ctm = s.ctm.Rotated(radians) }

// Scale implements composer.Surface.
func (s *Surface) Scale(sx, sy float64) { s.ctm = s.ctm.Scaled(sx, sy) }

// Save implements composer.Surface.
func (s *Surface) Save() { s.stack = append(s.stack, s.ctm) }

// Restore implements composer.Surface.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.ctm = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// ClearRect implements composer.Surface.
func (s *Surface) ClearRect(x, y, w, h float64) {
	if s.target == nil {
		return
	}
	op := &ebiten.DrawImageOptions{Blend: ebiten.BlendClear}
	s.rectGeoM(&op.GeoM, x, y, w, h)
	s.target.DrawImage(whitePixel(), op)
}

// FillRect implements composer.Surface.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if s.target == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	s.rectGeoM(&op.GeoM, x, y, w, h)
	op.ColorScale.ScaleWithColor(c)
	s.target.DrawImage(whitePixel(), op)
}

// StrokeDashedRect implements composer.Surface. Each dash is a filled
// quad centered on the outline, so dashes scale with the transform like a
// canvas stroke.
func (s *Surface) StrokeDashedRect(x, y, w, h float64, style composer.StrokeStyle) {
	if s.target == nil {
		return
	}
	for _, r := range dashRects(x, y, w, h, style.Width, style.Dash) {
		s.FillRect(r.X, r.Y, r.Width, r.Height, style.Color)
	}
}

// dashRects returns the quads of a dashed outline of width lw around
// (x, y, w, h), walking the edges clockwise from the top-left corner.
func dashRects(x, y, w, h, lw float64, pattern []float64) []composer.Rect {
	if lw <= 0 {
		lw = 1
	}
	half := lw / 2
	dist := 0.0
	edges := [4]struct {
		x0, y0, dx, dy, length float64
	}{
		{x, y, 1, 0, w},
		{x + w, y, 0, 1, h},
		{x + w, y + h, -1, 0, w},
		{x, y + h, 0, -1, h},
	}
	var rects []composer.Rect
	for _, e := range edges {
		for _, run := range dashRuns(dist, e.length, pattern) {
			ax, ay := e.x0+e.dx*run[0], e.y0+e.dy*run[0]
			bx, by := e.x0+e.dx*run[1], e.y0+e.dy*run[1]
			r := composer.Rect{
				X:      min(ax, bx) - half,
				Y:      min(ay, by) - half,
				Width:  math.Abs(bx-ax) + lw,
				Height: math.Abs(by-ay) + lw,
			}
			if e.dx == 0 {
				r.Width = lw
			} else {
				r.Height = lw
			}
			rects = append(rects, r)
		}
		dist += e.length
	}
	return rects
}

// DrawText implements composer.Surface.
func (s *Surface) DrawText(str string, x, y float64, style composer.TextStyle) {
	if s.target == nil || str == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(geoM(s.ctm))
	if style.Color != nil {
		op.ColorScale.ScaleWithColor(style.Color)
	}
	switch style.Align {
	case composer.TextAlignCenter:
		op.PrimaryAlign = text.AlignCenter
	case composer.TextAlignRight:
		op.PrimaryAlign = text.AlignEnd
	default:
		op.PrimaryAlign = text.AlignStart
	}
	op.SecondaryAlign = text.AlignCenter
	text.Draw(s.target, str, s.fonts.Face(style.Font), op)
}

// DrawImage implements composer.Surface.
func (s *Surface) DrawImage(img image.Image, x, y, w, h float64) {
	if s.target == nil || img == nil {
		return
	}
	eimg := s.image(img)
	b := eimg.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(geoM(s.ctm))
	s.target.DrawImage(eimg, op)
}

// image converts a decoded bitmap once and reuses the GPU copy. Decoders
// return pointer image types, so the interface value is a stable key.
func (s *Surface) image(img image.Image) *ebiten.Image {
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	if e, ok := s.images[img]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	s.images[img] = e
	return e
}

// rectGeoM maps the unit pixel onto (x, y, w, h) under the current
// transform.
func (s *Surface) rectGeoM(g *ebiten.GeoM, x, y, w, h float64) {
	g.Scale(w, h)
	g.Translate(x, y)
	g.Concat(geoM(s.ctm))
}

// geoM converts an affine matrix into an ebiten.GeoM.
func geoM(m composer.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// dashRuns splits an edge of the given length into the "on" intervals of
// pattern, continuing the pattern from start, the distance already
// travelled along the outline. An empty pattern yields one solid run.
func dashRuns(start, length float64, pattern []float64) [][2]float64 {
	if length <= 0 {
		return nil
	}
	total := 0.0
	for _, p := range pattern {
		total += p
	}
	if len(pattern) == 0 || total <= 0 {
		return [][2]float64{{0, length}}
	}

	var runs [][2]float64
	phase := start - total*float64(int(start/total))
	i := 0
	for phase >= pattern[i] {
		phase -= pattern[i]
		i = (i + 1) % len(pattern)
	}
	pos := 0.0
	for pos < length {
		seg := min(pattern[i]-phase, length-pos)
		if i%2 == 0 && seg > 0 {
			runs = append(runs, [2]float64{pos, pos + seg})
		}
		pos += seg
		phase = 0
		i = (i + 1) % len(pattern)
	}
	return runs
}
