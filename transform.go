package composer

import "math"

// ViewportPadding is the margin, in viewport pixels, reserved on each side
// of the viewport when fitting the project.
const ViewportPadding = 10.0

// minScale keeps the transform invertible when the viewport is smaller
// than the padding or the project has a zero dimension.
const minScale = 1e-6

// ViewportTransform maps model space to viewport space:
//
//	viewport = model*Scale + Translate
//
// It is recomputed for every frame and every pointer event from the same
// ComputeTransform call, so rendering and hit testing never disagree.
type ViewportTransform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// ComputeTransform fits project inside viewport with ViewportPadding on
// each side, preserving aspect ratio and never upscaling, and centers it in
// the full (unpadded) viewport.
func ComputeTransform(project, viewport Dimension) ViewportTransform {
	availW := viewport.Width - ViewportPadding*2
	availH := viewport.Height - ViewportPadding*2

	scaleX := axisScale(availW, project.Width)
	scaleY := axisScale(availH, project.Height)

	scale := math.Min(math.Min(scaleX, scaleY), 1)
	if scale < minScale || math.IsNaN(scale) {
		scale = minScale
	}

	return ViewportTransform{
		Scale:      scale,
		TranslateX: (viewport.Width - project.Width*scale) / 2,
		TranslateY: (viewport.Height - project.Height*scale) / 2,
	}
}

func axisScale(avail, size float64) float64 {
	if size <= 0 {
		return 1
	}
	return avail / size
}

// ToViewport maps a model-space position to viewport coordinates.
func (t ViewportTransform) ToViewport(p Position) (x, y float64) {
	return p.Left*t.Scale + t.TranslateX, p.Top*t.Scale + t.TranslateY
}

// ToModel maps a viewport-space point to model space.
func (t ViewportTransform) ToModel(x, y float64) Position {
	return Position{
		Left: (x - t.TranslateX) / t.Scale,
		Top:  (y - t.TranslateY) / t.Scale,
	}
}

// DeltaToModel converts a viewport-space displacement to model units.
// Displacements are vectors, so only the scale applies.
func (t ViewportTransform) DeltaToModel(dx, dy float64) (float64, float64) {
	return dx / t.Scale, dy / t.Scale
}

// Matrix returns the transform as an affine matrix.
func (t ViewportTransform) Matrix() Affine {
	return Affine{t.Scale, 0, 0, t.Scale, t.TranslateX, t.TranslateY}
}

// Affine is a 2D affine matrix laid out as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// Multiply returns m * o, i.e. o is applied first.
func (m Affine) Multiply(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Invert returns the inverse of m, or the identity when m is singular.
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Translated returns m followed locally by a translation, the way a
// canvas translate call composes with the current transform.
func (m Affine) Translated(x, y float64) Affine {
	return m.Multiply(Affine{1, 0, 0, 1, x, y})
}

// Scaled returns m composed with a local scale.
func (m Affine) Scaled(sx, sy float64) Affine {
	return m.Multiply(Affine{sx, 0, 0, sy, 0, 0})
}

// Rotated returns m composed with a local rotation of angle radians
// (clockwise on screen, since Y points down).
func (m Affine) Rotated(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return m.Multiply(Affine{cos, sin, -sin, cos, 0, 0})
}
