package composer

import (
	"image"
	"image/color"
)

// FontSpec names a font face by family and pixel size.
type FontSpec struct {
	Family string
	Size   float64
}

// TextStyle configures DrawText. Text is always vertically centered on
// the draw origin.
type TextStyle struct {
	Font  FontSpec
	Color color.Color
	Align TextAlign
}

// StrokeStyle configures StrokeDashedRect. An empty Dash draws a solid
// outline.
type StrokeStyle struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// Surface is an immediate-mode 2D drawing target with a current transform
// and a save/restore stack, in the manner of an HTML canvas context. All
// coordinates passed to drawing calls are transformed by the current
// transform.
type Surface interface {
	// Detached reports that the backing target is gone. Drawing on a
	// detached surface is a no-op.
	Detached() bool

	SetIdentity()
	Translate(x, y float64)
	Rotate(radians float64)
	Scale(sx, sy float64)
	Save()
	Restore()

	// ClearRect makes the rectangle fully transparent.
	ClearRect(x, y, w, h float64)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeDashedRect(x, y, w, h float64, style StrokeStyle)
	DrawText(s string, x, y float64, style TextStyle)
	// DrawImage draws img stretched into the destination rectangle.
	DrawImage(img image.Image, x, y, w, h float64)
}

// OpKind identifies a recorded drawing call.
type OpKind uint8

const (
	OpClearRect OpKind = iota
	OpFillRect
	OpStrokeRect
	OpText
	OpImage
)

func (k OpKind) String() string {
	switch k {
	case OpClearRect:
		return "clear"
	case OpFillRect:
		return "fill"
	case OpStrokeRect:
		return "stroke"
	case OpText:
		return "text"
	case OpImage:
		return "image"
	default:
		return "unknown"
	}
}

// SurfaceOp is one drawing call captured by RecordingSurface, together
// with the transform in effect when it was made.
type SurfaceOp struct {
	Kind      OpKind
	Transform Affine
	Rect      Rect
	Text      string
	TextStyle TextStyle
	Stroke    StrokeStyle
	Color     color.Color
	Image     image.Image
}

// RecordingSurface is a Surface that records drawing calls instead of
// rasterizing them. It tracks the transform stack exactly like a real
// backend, which makes it suitable for pipeline tests and for headless
// frame inspection.
type RecordingSurface struct {
	Ops []SurfaceOp

	ctm      Affine
	stack    []Affine
	detached bool
}

// NewRecordingSurface returns an attached surface with an identity
// transform.
func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{ctm: IdentityAffine}
}

// Detach marks the surface as gone; later frames must not draw on it.
func (r *RecordingSurface) Detach() { r.detached = true }

// Reset drops recorded ops and restores the identity transform.
func (r *RecordingSurface) Reset() {
	r.Ops = r.Ops[:0]
	r.ctm = IdentityAffine
	r.stack = r.stack[:0]
}

// Transform returns the current transform.
func (r *RecordingSurface) Transform() Affine { return r.ctm }

// Depth returns the save stack depth.
func (r *RecordingSurface) Depth() int { return len(r.stack) }

// OpsOf returns the recorded ops of kind k in call order.
func (r *RecordingSurface) OpsOf(k OpKind) []SurfaceOp {
	var out []SurfaceOp
	for _, op := range r.Ops {
		if op.Kind == k {
			out = append(out, op)
		}
	}
	return out
}

// Detached implements Surface.
func (r *RecordingSurface) Detached() bool { return r.detached }

// SetIdentity implements Surface.
func (r *RecordingSurface) SetIdentity() { r.ctm = IdentityAffine }

// Translate implements Surface.
func (r *RecordingSurface) Translate(x, y float64) { r.ctm = r.ctm.Translated(x, y) }

// Rotate implements Surface.
func (r *RecordingSurface) Rotate(radians float64) { r.ctm = r.ctm.Rotated(radians) }

// Scale implements Surface.
func (r *RecordingSurface) Scale(sx, sy float64) { r.ctm = r.ctm.Scaled(sx, sy) }

// Save implements Surface.
func (r *RecordingSurface) Save() { r.stack = append(r.stack, r.ctm) }

// Restore implements Surface. An unbalanced Restore is ignored.
func (r *RecordingSurface) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.ctm = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

// ClearRect implements Surface.
func (r *RecordingSurface) ClearRect(x, y, w, h float64) {
	r.record(SurfaceOp{Kind: OpClearRect, Rect: Rect{x, y, w, h}})
}

// FillRect implements Surface.
func (r *RecordingSurface) FillRect(x, y, w, h float64, c color.Color) {
	r.record(SurfaceOp{Kind: OpFillRect, Rect: Rect{x, y, w, h}, Color: c})
}

// StrokeDashedRect implements Surface.
func (r *RecordingSurface) StrokeDashedRect(x, y, w, h float64, style StrokeStyle) {
	r.record(SurfaceOp{Kind: OpStrokeRect, Rect: Rect{x, y, w, h}, Stroke: style})
}

// DrawText implements Surface.
func (r *RecordingSurface) DrawText(s string, x, y float64, style TextStyle) {
	r.record(SurfaceOp{Kind: OpText, Rect: Rect{X: x, Y: y}, Text: s, TextStyle: style})
}

// DrawImage implements Surface.
func (r *RecordingSurface) DrawImage(img image.Image, x, y, w, h float64) {
	r.record(SurfaceOp{Kind: OpImage, Rect: Rect{x, y, w, h}, Image: img})
}

func (r *RecordingSurface) record(op SurfaceOp) {
	if r.detached {
		return
	}
	op.Transform = r.ctm
	r.Ops = append(r.Ops, op)
}
