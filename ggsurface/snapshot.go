package ggsurface

import (
	"context"
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/phanxgames/composer"
)

// Render draws the editor's current state once and returns the pixels.
// Image layers are decoded before drawing so the frame is complete; decode
// failures leave their layers out and are returned alongside the image.
func Render(ctx context.Context, e *composer.Editor, log *zap.Logger) (image.Image, error) {
	vp := e.Session.ViewportDimension()
	w, h := int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height))
	s, err := New(w, h, log)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var sources []string
	for _, l := range e.Session.Layers() {
		if img, ok := l.(*composer.ImageLayer); ok {
			sources = append(sources, img.ImageSource)
		}
	}
	loadErr := e.Assets.Preload(ctx, sources...)

	if err := composer.RenderFrame(e.Session, e.Assets, s); err != nil {
		return nil, fmt.Errorf("ggsurface: render: %w", err)
	}
	// Copy out before Close releases the context.
	out := image.NewNRGBA(s.Image().Bounds())
	b := out.Bounds()
	src := s.Image()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, src.At(x, y))
		}
	}
	return out, loadErr
}

// WriteSnapshots renders the editor headlessly and writes one PNG per
// label into dir.
func WriteSnapshots(ctx context.Context, e *composer.Editor, dir string, labels []string, log *zap.Logger) ([]string, error) {
	img, err := Render(ctx, e, log)
	if img == nil {
		return nil, err
	}
	if err != nil && log != nil {
		log.Warn("snapshot rendered with missing images", zap.Error(err))
	}
	return composer.WriteSnapshots(dir, img, labels)
}
