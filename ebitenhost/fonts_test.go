package ebitenhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/composer"
)

func TestFontBookFallbackAndCache(t *testing.T) {
	b, err := NewFontBook()
	require.NoError(t, err)

	f := b.Face(composer.FontSpec{Family: "Arial", Size: 24})
	assert.Equal(t, 24.0, f.Size)
	assert.Same(t, b.fallback, f.Source)
	assert.Same(t, f, b.Face(composer.FontSpec{Family: "arial", Size: 24}))

	def := b.Face(composer.FontSpec{Family: "x"})
	assert.Equal(t, composer.DefaultFontSize, def.Size)
}

func TestFontBookRegister(t *testing.T) {
	b, err := NewFontBook()
	require.NoError(t, err)
	before := b.Face(composer.FontSpec{Family: "Mono", Size: 12})

	require.NoError(t, b.Register("MONO", goregular.TTF))
	after := b.Face(composer.FontSpec{Family: "Mono", Size: 12})
	assert.NotSame(t, before, after)
	assert.NotSame(t, b.fallback, after.Source)

	assert.Error(t, b.Register("bad", []byte("nope")))
	assert.Error(t, b.RegisterFile("missing", "does/not/exist.ttf"))
}
