package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/composer"
)

// overlay is the debug readout in the top-left corner. Its text is
// refreshed every ~0.5 seconds.
type overlay struct {
	img     *ebiten.Image
	elapsed float64
	lines   string
}

func newOverlay() *overlay {
	// 180x64 fits four lines of debug font.
	return &overlay{img: ebiten.NewImage(180, 64)}
}

func (o *overlay) update(dt float64, e *composer.Editor) {
	o.elapsed += dt
	if o.elapsed < 0.5 && o.lines != "" {
		return
	}
	o.elapsed = 0
	o.lines = overlayText(ebiten.ActualFPS(), e)
}

func (o *overlay) draw(screen *ebiten.Image) {
	o.img.Fill(color.RGBA{0, 0, 0, 255})
	ebitenutil.DebugPrintAt(o.img, o.lines, 4, 2)
	screen.DrawImage(o.img, nil)
}

func overlayText(fps float64, e *composer.Editor) string {
	sel := "-"
	if l, ok := e.Session.SelectedLayer(); ok {
		sel = l.Kind().String()
	}
	return fmt.Sprintf("FPS: %.1f\nLayers: %d\nSelected: %s\nScale: %.3f",
		fps, e.Session.LayerCount(), sel, e.Controller.Transform().Scale)
}
