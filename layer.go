package composer

import (
	"math"

	"github.com/google/uuid"
)

// LayerKind distinguishes the Layer variants.
type LayerKind uint8

const (
	LayerText  LayerKind = iota // *TextLayer
	LayerImage                  // *ImageLayer
)

func (k LayerKind) String() string {
	switch k {
	case LayerText:
		return "text"
	case LayerImage:
		return "image"
	default:
		return "unknown"
	}
}

// LayerBase holds the fields every layer variant carries.
type LayerBase struct {
	ID              string
	Position        Position
	Dimension       Dimension
	RotationDegrees float64
}

// LayerID returns the layer's unique id.
func (b *LayerBase) LayerID() string { return b.ID }

// Base returns a copy of the common fields.
func (b *LayerBase) Base() LayerBase { return *b }

func (b *LayerBase) base() *LayerBase { return b }

// Bounds returns the layer's unrotated, axis-aligned box in model space.
func (b LayerBase) Bounds() Rect {
	return Rect{X: b.Position.Left, Y: b.Position.Top, Width: b.Dimension.Width, Height: b.Dimension.Height}
}

// RotationRadians converts RotationDegrees for drawing. Rotation is not
// normalized; any real value is accepted.
func (b LayerBase) RotationRadians() float64 {
	return b.RotationDegrees * math.Pi / 180
}

// Layer is a positioned, rotatable visual element. The set of variants is
// closed: *TextLayer and *ImageLayer.
type Layer interface {
	Kind() LayerKind
	LayerID() string
	Base() LayerBase

	base() *LayerBase
	clone() Layer
}

// TextLayer draws a single line of static text centered in its box.
type TextLayer struct {
	LayerBase
	Text       string
	FontSize   float64
	FontColor  string
	FontFamily string
}

// Kind implements Layer.
func (l *TextLayer) Kind() LayerKind { return LayerText }

func (l *TextLayer) clone() Layer {
	c := *l
	return &c
}

// ImageLayer draws a bitmap stretched to its box. ImageSource is the asset
// cache key.
type ImageLayer struct {
	LayerBase
	ImageSource string
}

// Kind implements Layer.
func (l *ImageLayer) Kind() LayerKind { return LayerImage }

func (l *ImageLayer) clone() Layer {
	c := *l
	return &c
}

// LayerOption customizes a layer created by the session factories.
type LayerOption func(*LayerBase)

// WithPosition places the new layer at p instead of the origin.
func WithPosition(p Position) LayerOption {
	return func(b *LayerBase) { b.Position = p }
}

// WithDimension sizes the new layer. Sizes with a non-positive component
// are ignored and the variant's default is kept.
func WithDimension(d Dimension) LayerOption {
	return func(b *LayerBase) {
		if validDimension(d) {
			b.Dimension = d
		}
	}
}

// WithRotation sets the initial rotation in degrees.
func WithRotation(degrees float64) LayerOption {
	return func(b *LayerBase) { b.RotationDegrees = degrees }
}

func validDimension(d Dimension) bool {
	return d.Width > 0 && d.Height > 0
}

func newLayerID() string {
	return uuid.NewString()
}

func newTextLayer(id, text string, opts []LayerOption) *TextLayer {
	l := &TextLayer{
		LayerBase:  LayerBase{ID: id, Dimension: defaultTextDimension},
		Text:       text,
		FontSize:   DefaultFontSize,
		FontColor:  DefaultFontColor,
		FontFamily: DefaultFontFamily,
	}
	for _, opt := range opts {
		opt(&l.LayerBase)
	}
	return l
}

func newImageLayer(id, source string, opts []LayerOption) *ImageLayer {
	l := &ImageLayer{
		LayerBase:   LayerBase{ID: id, Dimension: defaultImageDimension},
		ImageSource: source,
	}
	for _, opt := range opts {
		opt(&l.LayerBase)
	}
	return l
}
