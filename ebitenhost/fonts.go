package ebitenhost

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/composer"
)

type faceKey struct {
	family string
	size   float64
}

// FontBook resolves layer font families to Ebitengine text/v2 faces.
// Families are matched case-insensitively; unknown families fall back to
// Go Regular.
type FontBook struct {
	sources  map[string]*text.GoTextFaceSource
	fallback *text.GoTextFaceSource
	faces    map[faceKey]*text.GoTextFace
}

// NewFontBook creates a font book with only the fallback face.
func NewFontBook() (*FontBook, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: parse fallback font: %w", err)
	}
	return &FontBook{
		sources:  make(map[string]*text.GoTextFaceSource),
		fallback: src,
		faces:    make(map[faceKey]*text.GoTextFace),
	}, nil
}

// Register parses TTF/OTF data and serves it for family.
func (b *FontBook) Register(family string, data []byte) error {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ebitenhost: parse font %q: %w", family, err)
	}
	family = strings.ToLower(family)
	b.sources[family] = src
	for k := range b.faces {
		if k.family == family {
			delete(b.faces, k)
		}
	}
	return nil
}

// RegisterFile is Register with data read from path.
func (b *FontBook) RegisterFile(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ebitenhost: read font %q: %w", family, err)
	}
	return b.Register(family, data)
}

// Face returns a cached face for spec.
func (b *FontBook) Face(spec composer.FontSpec) *text.GoTextFace {
	size := spec.Size
	if size <= 0 {
		size = composer.DefaultFontSize
	}
	key := faceKey{family: strings.ToLower(spec.Family), size: size}
	if f, ok := b.faces[key]; ok {
		return f
	}
	src, ok := b.sources[key.family]
	if !ok {
		src = b.fallback
	}
	f := &text.GoTextFace{Source: src, Size: size}
	b.faces[key] = f
	return f
}
