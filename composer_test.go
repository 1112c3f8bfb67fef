package composer

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Rect.Contains ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"left edge", 10, 40, true},
		{"right edge", 110, 40, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

// --- Rect.Intersects ---

func TestRectIntersects(t *testing.T) {
	base := Rect{10, 10, 100, 100}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlapping", Rect{50, 50, 100, 100}, true},
		{"fully contained", Rect{20, 20, 10, 10}, true},
		{"adjacent right", Rect{110, 10, 50, 50}, true},
		{"disjoint right", Rect{111, 10, 50, 50}, false},
		{"disjoint below", Rect{10, 111, 50, 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expect {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.expect)
			}
		})
	}
}

func TestRectCenter(t *testing.T) {
	x, y := Rect{100, 100, 200, 50}.Center()
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 125.0, y)
}

// --- ParseHexColor ---

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#000000", color.RGBA{0, 0, 0, 255}},
		{"#0066ff", color.RGBA{0, 0x66, 0xff, 255}},
		{"0066FF", color.RGBA{0, 0x66, 0xff, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#11223380", color.RGBA{0x11, 0x22, 0x33, 0x80}},
		{"  #abc  ", color.RGBA{0xaa, 0xbb, 0xcc, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHexColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#12345", "#gggggg", "red"} {
		_, err := ParseHexColor(in)
		assert.Error(t, err, "ParseHexColor(%q)", in)
	}
	assert.Equal(t, color.RGBA{A: 255}, colorOrBlack("nope"))
}

// --- Layers ---

func TestLayerDefaults(t *testing.T) {
	s := NewEditSession(Dimension{})
	text := s.AddTextLayer("Hello")
	img := s.AddImageLayer("a.png")

	l, ok := s.Layer(text)
	require.True(t, ok)
	tl := l.(*TextLayer)
	assert.Equal(t, LayerText, tl.Kind())
	assert.Equal(t, Position{}, tl.Position)
	assert.Equal(t, Dimension{Width: 200, Height: 50}, tl.Dimension)
	assert.Equal(t, 16.0, tl.FontSize)
	assert.Equal(t, "#000000", tl.FontColor)
	assert.Equal(t, "Arial", tl.FontFamily)

	l, ok = s.Layer(img)
	require.True(t, ok)
	il := l.(*ImageLayer)
	assert.Equal(t, LayerImage, il.Kind())
	assert.Equal(t, Dimension{Width: 100, Height: 100}, il.Dimension)
	assert.Equal(t, "a.png", il.ImageSource)
}

func TestLayerOptions(t *testing.T) {
	s := NewEditSession(Dimension{Width: 800, Height: 600})
	id := s.AddTextLayer("x",
		WithPosition(Position{Top: 5, Left: 7}),
		WithDimension(Dimension{Width: 0, Height: 10}), // ignored
		WithRotation(45))
	l, _ := s.Layer(id)
	b := l.Base()
	assert.Equal(t, Position{Top: 5, Left: 7}, b.Position)
	assert.Equal(t, defaultTextDimension, b.Dimension)
	assert.InDelta(t, 0.785398, b.RotationRadians(), 1e-6)
	assert.Equal(t, Rect{X: 7, Y: 5, Width: 200, Height: 50}, b.Bounds())
}
