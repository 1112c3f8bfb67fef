package ggsurface

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/composer"
)

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestNewInvalidSize(t *testing.T) {
	_, err := New(0, 10, nil)
	assert.Error(t, err)
}

func TestFillAndClear(t *testing.T) {
	s, err := New(40, 40, nil)
	require.NoError(t, err)
	defer s.Close()

	s.FillRect(0, 0, 40, 40, color.RGBA{255, 0, 0, 255})
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgbaAt(s.Image(), 20, 20))

	s.Translate(10, 10)
	s.ClearRect(0, 0, 10, 10)
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 15, 15).A)
	assert.Equal(t, uint8(255), rgbaAt(s.Image(), 5, 5).A)
}

func TestCloseDetaches(t *testing.T) {
	s, err := New(10, 10, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.True(t, s.Detached())
	assert.NoError(t, s.Close())

	// Drawing after close is ignored.
	s.FillRect(0, 0, 10, 10, color.Black)
}

func TestSurfacesShareFontSource(t *testing.T) {
	a, err := New(10, 10, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(20, 20, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.Same(t, a.font, b.font)
}

func TestRenderRotatedText(t *testing.T) {
	ed := composer.NewEditor(composer.EditorOptions{
		Viewport: composer.Dimension{Width: 900, Height: 700},
	})
	defer ed.Close()
	ed.Session.AddTextLayer("WWWWWWWWWWWW",
		composer.WithPosition(composer.Position{Top: 150, Left: 100}),
		composer.WithDimension(composer.Dimension{Width: 200, Height: 50}),
		composer.WithRotation(90))

	img, err := Render(t.Context(), ed, nil)
	require.NoError(t, err)

	ink := image.Rectangle{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := rgbaAt(img, x, y); c.A > 0 && c.R < 128 {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	require.False(t, ink.Empty(), "no text drawn")
	assert.Greater(t, ink.Dy(), ink.Dx(), "ink box %v", ink)

	// The layer center is model (200, 175), viewport (250, 225).
	cx, cy := (ink.Min.X+ink.Max.X)/2, (ink.Min.Y+ink.Max.Y)/2
	assert.InDelta(t, 250, cx, 6)
	assert.InDelta(t, 225, cy, 6)
}

func TestRenderEditor(t *testing.T) {
	ed := composer.NewEditor(composer.EditorOptions{
		Viewport: composer.Dimension{Width: 420, Height: 320},
		Loader: composer.AssetLoaderFunc(func(ctx context.Context, key string) (image.Image, error) {
			img := image.NewRGBA(image.Rect(0, 0, 2, 2))
			for i := range img.Pix {
				img.Pix[i] = 0xff
			}
			return img, nil
		}),
	})
	defer ed.Close()
	ed.Session.AddImageLayer("a.png", composer.WithPosition(composer.Position{Top: 0, Left: 0}))
	ed.Session.AddTextLayer("Hello", composer.WithPosition(composer.Position{Top: 300, Left: 300}))

	img, err := Render(t.Context(), ed, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 420, 320), img.Bounds())

	// Padding around the scaled project stays transparent; the project
	// background is white.
	assert.Equal(t, uint8(0), rgbaAt(img, 2, 2).A)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(img, 400, 300))
	assert.Equal(t, composer.AssetReady, ed.Assets.State("a.png"))
}

func TestWriteSnapshots(t *testing.T) {
	ed := composer.NewEditor(composer.EditorOptions{Viewport: composer.Dimension{Width: 100, Height: 80}})
	defer ed.Close()

	paths, err := WriteSnapshots(t.Context(), ed, filepath.Join(t.TempDir(), "snaps"), []string{"empty"}, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.FileExists(t, paths[0])
}
