package composer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqIDs returns a deterministic id generator: l1, l2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("l%d", n)
	}
}

func newTestSession() *EditSession {
	return NewEditSession(Dimension{Width: 800, Height: 600},
		WithIDGenerator(seqIDs()),
		WithViewport(Dimension{Width: 900, Height: 700}))
}

func layerIDs(s *EditSession) []string {
	var ids []string
	for _, l := range s.Layers() {
		ids = append(ids, l.LayerID())
	}
	return ids
}

func TestNewEditSessionDefaults(t *testing.T) {
	s := NewEditSession(Dimension{Width: -1, Height: 600})
	assert.Equal(t, Dimension{Width: 800, Height: 600}, s.ProjectDimension())
	assert.Equal(t, 0, s.LayerCount())
	_, ok := s.SelectedLayerID()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), s.Generation())
}

func TestAddLayersAppendsInPaintOrder(t *testing.T) {
	s := newTestSession()
	s.AddTextLayer("a")
	s.AddImageLayer("b.png")
	s.AddTextLayer("c")
	assert.Equal(t, []string{"l1", "l2", "l3"}, layerIDs(s))
	assert.Equal(t, uint64(3), s.Generation())
}

func TestLayerIDsAreUnique(t *testing.T) {
	s := NewEditSession(Dimension{})
	seen := map[string]bool{}
	for range 200 {
		id := s.AddTextLayer("x")
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestRemoveLayerKeepsOrder(t *testing.T) {
	s := newTestSession()
	for range 5 {
		s.AddTextLayer("x")
	}
	s.RemoveLayer("l3")
	assert.Equal(t, []string{"l1", "l2", "l4", "l5"}, layerIDs(s))
}

func TestRemoveSelectedClearsSelection(t *testing.T) {
	s := newTestSession()
	a := s.AddTextLayer("a")
	b := s.AddTextLayer("b")

	s.SelectLayer(a)
	s.RemoveLayer(b)
	id, ok := s.SelectedLayerID()
	assert.True(t, ok)
	assert.Equal(t, a, id)

	s.RemoveLayer(a)
	_, ok = s.SelectedLayerID()
	assert.False(t, ok)
}

func TestMissingIDsAreIgnored(t *testing.T) {
	s := newTestSession()
	s.AddTextLayer("a")
	gen := s.Generation()
	before := s.Layers()

	s.RemoveLayer("nope")
	s.UpdateLayerPosition("nope", At(1, 2))
	s.UpdateLayerRotation("nope", 30)
	s.UpdateLayerDimension("nope", Dimension{Width: 5, Height: 5})
	s.MoveLayer("nope", 0)
	txt := "t"
	s.UpdateTextLayer("nope", TextPatch{Text: &txt})

	assert.Equal(t, gen, s.Generation())
	assert.Equal(t, before, s.Layers())

	err := s.TryUpdateLayerPosition("nope", At(1, 2))
	assert.True(t, errors.Is(err, ErrLayerNotFound))
}

func TestSelectUnknownID(t *testing.T) {
	s := newTestSession()
	s.SelectLayer("ghost")
	id, ok := s.SelectedLayerID()
	assert.True(t, ok)
	assert.Equal(t, "ghost", id)
	_, ok = s.SelectedLayer()
	assert.False(t, ok)

	s.ClearSelection()
	_, ok = s.SelectedLayerID()
	assert.False(t, ok)
}

func TestUpdateLayerPositionMerges(t *testing.T) {
	s := newTestSession()
	id := s.AddTextLayer("a", WithPosition(Position{Top: 10, Left: 20}))

	top := 99.0
	s.UpdateLayerPosition(id, PositionPatch{Top: &top})
	l, _ := s.Layer(id)
	assert.Equal(t, Position{Top: 99, Left: 20}, l.Base().Position)

	// Only the position changed.
	assert.Equal(t, defaultTextDimension, l.Base().Dimension)
	assert.Equal(t, "a", l.(*TextLayer).Text)
}

func TestNoOpMutationsKeepGeneration(t *testing.T) {
	s := newTestSession()
	id := s.AddTextLayer("a", WithPosition(Position{Top: 1, Left: 1}))
	s.SelectLayer(id)
	gen := s.Generation()

	s.SelectLayer(id)
	s.UpdateLayerPosition(id, At(1, 1))
	s.UpdateLayerRotation(id, 0)
	s.UpdateLayerDimension(id, defaultTextDimension)
	s.UpdateLayerDimension(id, Dimension{Width: -3, Height: 10})
	s.MoveLayer(id, 5)
	s.SetViewportDimension(Dimension{Width: 900, Height: 700})

	assert.Equal(t, gen, s.Generation())
}

func TestUpdateTextLayer(t *testing.T) {
	s := newTestSession()
	id := s.AddTextLayer("a")
	img := s.AddImageLayer("x.png")

	txt, color, size := "Hello", "#ff0000", 0.0
	s.UpdateTextLayer(id, TextPatch{Text: &txt, FontColor: &color, FontSize: &size})
	l, _ := s.Layer(id)
	tl := l.(*TextLayer)
	assert.Equal(t, "Hello", tl.Text)
	assert.Equal(t, "#ff0000", tl.FontColor)
	assert.Equal(t, 16.0, tl.FontSize, "non-positive size ignored")

	gen := s.Generation()
	s.UpdateTextLayer(img, TextPatch{Text: &txt})
	assert.Equal(t, gen, s.Generation())
}

func TestMoveLayer(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		index int
		want  []string
	}{
		{"to top", "l1", 3, []string{"l2", "l3", "l4", "l1"}},
		{"to bottom", "l4", 0, []string{"l4", "l1", "l2", "l3"}},
		{"middle down", "l3", 1, []string{"l1", "l3", "l2", "l4"}},
		{"clamped high", "l2", 99, []string{"l1", "l3", "l4", "l2"}},
		{"clamped low", "l3", -5, []string{"l3", "l1", "l2", "l4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			for range 4 {
				s.AddTextLayer("x")
			}
			s.MoveLayer(tt.id, tt.index)
			assert.Equal(t, tt.want, layerIDs(s))
		})
	}
}

func TestLayersReturnsCopies(t *testing.T) {
	s := newTestSession()
	id := s.AddTextLayer("a")
	ls := s.Layers()
	ls[0].(*TextLayer).Text = "mutated"
	ls[0].(*TextLayer).Position.Top = 500

	l, _ := s.Layer(id)
	assert.Equal(t, "a", l.(*TextLayer).Text)
	assert.Equal(t, 0.0, l.Base().Position.Top)

	p := s.Project()
	assert.Equal(t, Dimension{Width: 800, Height: 600}, p.Dimension)
	assert.Len(t, p.Layers, 1)
}

func TestSetViewportDimensionClamps(t *testing.T) {
	s := newTestSession()
	s.SetViewportDimension(Dimension{Width: -5, Height: 300})
	assert.Equal(t, Dimension{Width: 0, Height: 300}, s.ViewportDimension())
	assert.Equal(t, Dimension{Width: 800, Height: 600}, s.ProjectDimension())
}

func TestSubscribe(t *testing.T) {
	s := newTestSession()
	var got []Change
	sub := s.Subscribe(func(c Change) { got = append(got, c) })

	id := s.AddTextLayer("a")
	s.SelectLayer(id)
	s.UpdateLayerPosition(id, At(5, 5))
	s.RemoveLayer(id)

	require.Len(t, got, 4)
	assert.Equal(t, ChangeLayerAdded, got[0].Kind)
	assert.Equal(t, ChangeSelection, got[1].Kind)
	assert.Equal(t, ChangeLayerUpdated, got[2].Kind)
	assert.Equal(t, ChangeLayerRemoved, got[3].Kind)
	assert.Equal(t, s.Generation(), got[3].Generation)

	sub.Remove()
	sub.Remove()
	s.AddTextLayer("b")
	assert.Len(t, got, 4)
}

func TestSubscriptionRemoveDuringNotify(t *testing.T) {
	s := newTestSession()
	var calls []string
	var first Subscription
	first = s.Subscribe(func(Change) {
		calls = append(calls, "first")
		first.Remove()
	})
	s.Subscribe(func(Change) { calls = append(calls, "second") })

	s.AddTextLayer("a")
	s.AddTextLayer("b")
	assert.Equal(t, []string{"first", "second", "second"}, calls)
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "layer_added", ChangeLayerAdded.String())
	assert.Equal(t, "viewport", ChangeViewport.String())
	assert.Equal(t, "unknown", ChangeKind(99).String())
}
