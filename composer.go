package composer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Dimension is a width/height pair in pixels of whichever space it is used
// in. Components are non-negative.
type Dimension struct {
	Width, Height float64
}

// Position is a top/left coordinate. Whether it is model space or viewport
// space depends on context; the two are never mixed without going through
// a ViewportTransform.
type Position struct {
	Top, Left float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// TextAlign controls horizontal text alignment around the draw origin.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // origin is the left edge
	TextAlignCenter                  // origin is the horizontal center
	TextAlignRight                   // origin is the right edge
)

// Default styling shared by the render pipeline and the layer factories.
const (
	DefaultFontSize   = 16.0
	DefaultFontColor  = "#000000"
	DefaultFontFamily = "Arial"

	BackgroundColor = "#ffffff"

	SelectionColor       = "#0066ff"
	SelectionStrokeWidth = 2.0
)

// SelectionDash is the dash pattern of the selection outline, in model
// units: 5 on, 5 off.
var SelectionDash = []float64{5, 5}

var (
	defaultTextDimension  = Dimension{Width: 200, Height: 50}
	defaultImageDimension = Dimension{Width: 100, Height: 100}
	defaultProject        = Dimension{Width: 800, Height: 600}
)

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#'
// optional) into an opaque-by-default RGBA color.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("composer: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("composer: invalid hex color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// colorOrBlack parses s and falls back to opaque black on malformed input.
func colorOrBlack(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}
