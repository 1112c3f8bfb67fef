// Package ggsurface renders composer frames off screen with the gogpu/gg
// software rasterizer, for snapshots and headless runs.
package ggsurface

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/composer"
)

// Surface implements composer.Surface on a gg.Context. Every draw call,
// text included, goes through the current transform.
type Surface struct {
	dc     *gg.Context
	font   *text.FontSource
	faces  map[float64]text.Face
	images map[image.Image]*gg.ImageBuf
	log    *zap.Logger
	closed bool
}

// goRegular parses the built-in face once per process.
var goRegular = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// New creates a surface of the given pixel size.
func New(width, height int, log *zap.Logger) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ggsurface: invalid size %dx%d", width, height)
	}
	src, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("ggsurface: load font: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Surface{
		dc:     gg.NewContext(width, height),
		font:   src,
		faces:  make(map[float64]text.Face),
		images: make(map[image.Image]*gg.ImageBuf),
		log:    log,
	}, nil
}

// Image returns the rendered pixels.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// Close releases the context. The surface reports itself detached after.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	clear(s.images)
	return s.dc.Close()
}

// Detached implements composer.Surface.
func (s *Surface) Detached() bool { return s.closed }

// SetIdentity implements composer.Surface.
func (s *Surface) SetIdentity() { s.dc.Identity() }

// Translate implements composer.Surface.
func (s *Surface) Translate(x, y float64) { s.dc.Translate(x, y) }

// Rotate implements composer.Surface.
func (s *Surface) Rotate(radians float64) { s.dc.Rotate(radians) }

// Scale implements composer.Surface.
func (s *Surface) Scale(sx, sy float64) { s.dc.Scale(sx, sy) }

// Save implements composer.Surface.
func (s *Surface) Save() { s.dc.Push() }

// Restore implements composer.Surface.
func (s *Surface) Restore() { s.dc.Pop() }

// ClearRect implements composer.Surface. The rectangle is cleared in
// device space over its transformed bounding box.
func (s *Surface) ClearRect(x, y, w, h float64) {
	if s.closed {
		return
	}
	x0, y0, x1, y1 := s.deviceBounds(x, y, w, h)
	W, H := s.dc.Width(), s.dc.Height()
	if x0 <= 0 && y0 <= 0 && x1 >= W && y1 >= H {
		s.dc.Clear()
		return
	}
	for py := max(y0, 0); py < min(y1, H); py++ {
		for px := max(x0, 0); px < min(x1, W); px++ {
			s.dc.SetPixel(px, py, gg.Transparent)
		}
	}
}

// FillRect implements composer.Surface.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if s.closed {
		return
	}
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(c)
	if err := s.dc.Fill(); err != nil {
		s.log.Debug("fill failed", zap.Error(err))
	}
}

// StrokeDashedRect implements composer.Surface.
func (s *Surface) StrokeDashedRect(x, y, w, h float64, style composer.StrokeStyle) {
	if s.closed {
		return
	}
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(style.Color)
	s.dc.SetLineWidth(style.Width)
	s.dc.SetDash(style.Dash...)
	if err := s.dc.Stroke(); err != nil {
		s.log.Debug("stroke failed", zap.Error(err))
	}
	s.dc.ClearDash()
}

// DrawText implements composer.Surface.
func (s *Surface) DrawText(str string, x, y float64, style composer.TextStyle) {
	if s.closed || str == "" {
		return
	}
	size := style.Font.Size
	if size <= 0 {
		size = composer.DefaultFontSize
	}
	s.dc.SetFont(s.face(size))
	if style.Color != nil {
		s.dc.SetColor(style.Color)
	}
	ax := 0.0
	switch style.Align {
	case composer.TextAlignCenter:
		ax = 0.5
	case composer.TextAlignRight:
		ax = 1
	}
	s.dc.DrawStringAnchored(str, x, y, ax, 0.5)
}

// DrawImage implements composer.Surface.
func (s *Surface) DrawImage(img image.Image, x, y, w, h float64) {
	if s.closed || img == nil {
		return
	}
	buf, ok := s.images[img]
	if !ok {
		buf = gg.ImageBufFromImage(img)
		s.images[img] = buf
	}
	s.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// face returns a cached face at a size rounded to a quarter pixel.
func (s *Surface) face(size float64) text.Face {
	size = math.Round(size*4) / 4
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := s.font.Face(size)
	s.faces[size] = f
	return f
}

func (s *Surface) deviceBounds(x, y, w, h float64) (x0, y0, x1, y1 int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}} {
		px, py := s.dc.TransformPoint(p[0], p[1])
		minX, minY = math.Min(minX, px), math.Min(minY, py)
		maxX, maxY = math.Max(maxX, px), math.Max(maxY, py)
	}
	return int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY))
}
