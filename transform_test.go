package composer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Affine) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- ComputeTransform ---

func TestComputeTransform(t *testing.T) {
	tests := []struct {
		name     string
		project  Dimension
		viewport Dimension
		scale    float64
		tx, ty   float64
	}{
		{"fits without scaling", Dimension{800, 600}, Dimension{900, 700}, 1, 50, 50},
		{"exact fit with padding", Dimension{800, 600}, Dimension{820, 620}, 1, 10, 10},
		{"width bound", Dimension{800, 600}, Dimension{420, 1000}, 0.5, 10, 350},
		{"height bound", Dimension{800, 600}, Dimension{2000, 320}, 0.5, 800, 10},
		{"never upscales", Dimension{100, 100}, Dimension{4000, 4000}, 1, 1950, 1950},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTransform(tt.project, tt.viewport)
			assertNear(t, "scale", got.Scale, tt.scale)
			assertNear(t, "tx", got.TranslateX, tt.tx)
			assertNear(t, "ty", got.TranslateY, tt.ty)
		})
	}
}

func TestComputeTransformDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		project  Dimension
		viewport Dimension
	}{
		{"viewport smaller than padding", Dimension{800, 600}, Dimension{15, 15}},
		{"zero viewport", Dimension{800, 600}, Dimension{}},
		{"zero project", Dimension{}, Dimension{800, 600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTransform(tt.project, tt.viewport)
			assert.False(t, math.IsNaN(got.Scale))
			assert.False(t, math.IsInf(got.Scale, 0))
			assert.Greater(t, got.Scale, 0.0)
			assert.LessOrEqual(t, got.Scale, 1.0)

			// Still invertible.
			p := got.ToModel(got.ToViewport(Position{Top: 3, Left: 4}))
			assert.InDelta(t, 4, p.Left, 1e-3)
			assert.InDelta(t, 3, p.Top, 1e-3)
		})
	}
}

func TestComputeTransformScaleNeverAboveOne(t *testing.T) {
	for _, vp := range []Dimension{{100, 100}, {820, 620}, {5000, 300}, {300, 5000}, {1e6, 1e6}} {
		got := ComputeTransform(Dimension{800, 600}, vp)
		assert.LessOrEqual(t, got.Scale, 1.0, "viewport %v", vp)
		assert.LessOrEqual(t, 800*got.Scale, math.Max(vp.Width-20, 800*minScale)+epsilon)
	}
}

func TestViewportRoundTrip(t *testing.T) {
	tr := ComputeTransform(Dimension{800, 600}, Dimension{420, 333})
	for _, p := range []Position{{0, 0}, {600, 800}, {125.5, -40}} {
		x, y := tr.ToViewport(p)
		back := tr.ToModel(x, y)
		assertNear(t, "left", back.Left, p.Left)
		assertNear(t, "top", back.Top, p.Top)
	}
}

func TestDeltaToModel(t *testing.T) {
	tr := ComputeTransform(Dimension{800, 600}, Dimension{420, 1000})
	dx, dy := tr.DeltaToModel(10, -5)
	assertNear(t, "dx", dx, 20)
	assertNear(t, "dy", dy, -10)
}

// --- Affine ---

func TestAffineCompose(t *testing.T) {
	m := IdentityAffine.Translated(10, 20).Scaled(2, 2)
	x, y := m.Apply(1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 22)

	r := IdentityAffine.Rotated(math.Pi / 2)
	x, y = r.Apply(1, 0)
	assertNear(t, "rot x", x, 0)
	assertNear(t, "rot y", y, 1)
}

func TestAffineInvert(t *testing.T) {
	m := IdentityAffine.Translated(30, -4).Rotated(0.7).Scaled(3, 0.5)
	assertMatrix(t, "m*inv", m.Multiply(m.Invert()), IdentityAffine)
	assertMatrix(t, "singular", Affine{0, 0, 0, 0, 5, 5}.Invert(), IdentityAffine)
}

func TestViewportMatrixMatchesTransform(t *testing.T) {
	tr := ComputeTransform(Dimension{800, 600}, Dimension{500, 500})
	x1, y1 := tr.ToViewport(Position{Top: 40, Left: 70})
	x2, y2 := tr.Matrix().Apply(70, 40)
	assertNear(t, "x", x2, x1)
	assertNear(t, "y", y2, y1)
}
