package composer

import (
	"fmt"

	"go.uber.org/zap"
)

// Project is a read-only snapshot of the document: its layers in paint
// order (index 0 first, last topmost) and its fixed dimension.
type Project struct {
	Layers    []Layer
	Dimension Dimension
}

// ChangeKind identifies what a mutation touched.
type ChangeKind uint8

const (
	ChangeLayerAdded     ChangeKind = iota // a factory appended a layer
	ChangeLayerRemoved                     // RemoveLayer dropped a layer
	ChangeLayerUpdated                     // position, size, rotation or text changed
	ChangeLayerReordered                   // paint order changed
	ChangeSelection                        // selection set or cleared
	ChangeViewport                         // viewport dimension replaced
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeLayerAdded:
		return "layer_added"
	case ChangeLayerRemoved:
		return "layer_removed"
	case ChangeLayerUpdated:
		return "layer_updated"
	case ChangeLayerReordered:
		return "layer_reordered"
	case ChangeSelection:
		return "selection"
	case ChangeViewport:
		return "viewport"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after every effective mutation.
type Change struct {
	Kind       ChangeKind
	LayerID    string
	Generation uint64
}

type changeHandler struct {
	id uint32
	fn func(Change)
}

// Subscription allows removing a registered change callback.
type Subscription struct {
	id uint32
	s  *EditSession
}

// Remove unregisters the callback. Safe to call more than once and from
// inside the callback itself.
func (sub Subscription) Remove() {
	if sub.s == nil {
		return
	}
	hs := sub.s.handlers
	for i := range hs {
		if hs[i].id == sub.id {
			// Copy-on-write so an in-progress notify keeps its slice.
			next := make([]changeHandler, 0, len(hs)-1)
			next = append(next, hs[:i]...)
			next = append(next, hs[i+1:]...)
			sub.s.handlers = next
			return
		}
	}
}

// SessionOption configures an EditSession.
type SessionOption func(*EditSession)

// WithLogger routes session diagnostics to l.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *EditSession) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new layer ids.
// The generator must never repeat a value within the session.
func WithIDGenerator(fn func() string) SessionOption {
	return func(s *EditSession) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithViewport sets the initial viewport dimension.
func WithViewport(d Dimension) SessionOption {
	return func(s *EditSession) { s.viewport = d }
}

// EditSession is the single source of truth for an open document. Its
// fields are only written through the mutation methods below; every
// effective mutation bumps Generation and notifies subscribers.
//
// EditSession is not safe for concurrent use. It belongs to the loop that
// drives input and rendering.
type EditSession struct {
	layers   []Layer
	project  Dimension
	selected string
	viewport Dimension

	generation uint64
	handlers   []changeHandler
	nextID     uint32

	newID func() string
	log   *zap.Logger
}

// NewEditSession creates an empty session for a document of the given
// dimension. A non-positive dimension falls back to 800x600.
func NewEditSession(project Dimension, opts ...SessionOption) *EditSession {
	if !validDimension(project) {
		project = defaultProject
	}
	s := &EditSession{
		project: project,
		newID:   newLayerID,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to run after every effective mutation.
func (s *EditSession) Subscribe(fn func(Change)) Subscription {
	s.nextID++
	id := s.nextID
	next := make([]changeHandler, 0, len(s.handlers)+1)
	next = append(next, s.handlers...)
	s.handlers = append(next, changeHandler{id: id, fn: fn})
	return Subscription{id: id, s: s}
}

func (s *EditSession) notify(kind ChangeKind, layerID string) {
	s.generation++
	c := Change{Kind: kind, LayerID: layerID, Generation: s.generation}
	for _, h := range s.handlers {
		h.fn(c)
	}
}

// --- Mutation API ---

// AddTextLayer appends a text layer on top of the paint order and returns
// its id. Defaults: position {0,0}, dimension {200,50}, 16px black Arial.
func (s *EditSession) AddTextLayer(text string, opts ...LayerOption) string {
	l := newTextLayer(s.newID(), text, opts)
	s.layers = append(s.layers, l)
	s.notify(ChangeLayerAdded, l.ID)
	return l.ID
}

// AddImageLayer appends an image layer on top of the paint order and
// returns its id. Default dimension is {100,100}.
func (s *EditSession) AddImageLayer(source string, opts ...LayerOption) string {
	l := newImageLayer(s.newID(), source, opts)
	s.layers = append(s.layers, l)
	s.notify(ChangeLayerAdded, l.ID)
	return l.ID
}

// RemoveLayer drops the layer with the given id. Missing ids are ignored.
// Removing the selected layer clears the selection.
func (s *EditSession) RemoveLayer(id string) {
	i := s.indexOf(id)
	if i < 0 {
		s.missing("remove", id)
		return
	}
	copy(s.layers[i:], s.layers[i+1:])
	s.layers[len(s.layers)-1] = nil
	s.layers = s.layers[:len(s.layers)-1]
	if s.selected == id {
		s.selected = ""
	}
	s.notify(ChangeLayerRemoved, id)
}

// SelectLayer sets the selection unconditionally, even to an id that is
// not in the project. An empty id clears the selection.
func (s *EditSession) SelectLayer(id string) {
	if s.selected == id {
		return
	}
	s.selected = id
	s.notify(ChangeSelection, id)
}

// ClearSelection sets the selection to none.
func (s *EditSession) ClearSelection() {
	s.SelectLayer("")
}

// PositionPatch carries the position fields to merge. Nil fields are left
// untouched.
type PositionPatch struct {
	Top  *float64
	Left *float64
}

// At returns a patch that sets both fields.
func At(top, left float64) PositionPatch {
	return PositionPatch{Top: &top, Left: &left}
}

// UpdateLayerPosition merges patch into the layer's position. Missing ids
// are ignored.
func (s *EditSession) UpdateLayerPosition(id string, patch PositionPatch) {
	if err := s.TryUpdateLayerPosition(id, patch); err != nil {
		s.log.Debug("position update ignored", zap.String("layer", id), zap.Error(err))
	}
}

// TryUpdateLayerPosition is UpdateLayerPosition for callers that want to
// know the id was missing. The returned error wraps ErrLayerNotFound.
func (s *EditSession) TryUpdateLayerPosition(id string, patch PositionPatch) error {
	l := s.find(id)
	if l == nil {
		return fmt.Errorf("update position of %q: %w", id, ErrLayerNotFound)
	}
	b := l.base()
	next := b.Position
	if patch.Top != nil {
		next.Top = *patch.Top
	}
	if patch.Left != nil {
		next.Left = *patch.Left
	}
	if next == b.Position {
		return nil
	}
	b.Position = next
	s.notify(ChangeLayerUpdated, id)
	return nil
}

// UpdateLayerRotation sets the layer's rotation in degrees.
func (s *EditSession) UpdateLayerRotation(id string, degrees float64) {
	l := s.find(id)
	if l == nil {
		s.missing("rotate", id)
		return
	}
	if l.base().RotationDegrees == degrees {
		return
	}
	l.base().RotationDegrees = degrees
	s.notify(ChangeLayerUpdated, id)
}

// UpdateLayerDimension resizes the layer. Non-positive sizes are ignored.
func (s *EditSession) UpdateLayerDimension(id string, d Dimension) {
	if !validDimension(d) {
		s.log.Debug("dimension update ignored", zap.String("layer", id),
			zap.Float64("width", d.Width), zap.Float64("height", d.Height))
		return
	}
	l := s.find(id)
	if l == nil {
		s.missing("resize", id)
		return
	}
	if l.base().Dimension == d {
		return
	}
	l.base().Dimension = d
	s.notify(ChangeLayerUpdated, id)
}

// TextPatch carries text layer fields to merge. Nil fields are left
// untouched; a non-positive FontSize is ignored.
type TextPatch struct {
	Text       *string
	FontSize   *float64
	FontColor  *string
	FontFamily *string
}

// UpdateTextLayer merges patch into a text layer. Ids that are missing or
// name an image layer are ignored.
func (s *EditSession) UpdateTextLayer(id string, patch TextPatch) {
	tl, ok := s.find(id).(*TextLayer)
	if !ok {
		s.missing("edit text", id)
		return
	}
	before := *tl
	if patch.Text != nil {
		tl.Text = *patch.Text
	}
	if patch.FontSize != nil && *patch.FontSize > 0 {
		tl.FontSize = *patch.FontSize
	}
	if patch.FontColor != nil {
		tl.FontColor = *patch.FontColor
	}
	if patch.FontFamily != nil {
		tl.FontFamily = *patch.FontFamily
	}
	if *tl == before {
		return
	}
	s.notify(ChangeLayerUpdated, id)
}

// MoveLayer moves the layer to index in the paint order, clamped to the
// valid range. Higher indexes paint later (on top).
func (s *EditSession) MoveLayer(id string, index int) {
	from := s.indexOf(id)
	if from < 0 {
		s.missing("reorder", id)
		return
	}
	index = max(0, min(index, len(s.layers)-1))
	if index == from {
		return
	}
	l := s.layers[from]
	if from < index {
		copy(s.layers[from:index], s.layers[from+1:index+1])
	} else {
		copy(s.layers[index+1:from+1], s.layers[index:from])
	}
	s.layers[index] = l
	s.notify(ChangeLayerReordered, id)
}

// SetViewportDimension replaces the stored viewport size. The project
// dimension is unaffected.
func (s *EditSession) SetViewportDimension(d Dimension) {
	if d.Width < 0 {
		d.Width = 0
	}
	if d.Height < 0 {
		d.Height = 0
	}
	if s.viewport == d {
		return
	}
	s.viewport = d
	s.notify(ChangeViewport, "")
}

// --- Read API ---

// Generation increments on every effective mutation.
func (s *EditSession) Generation() uint64 { return s.generation }

// ProjectDimension returns the document size in model units.
func (s *EditSession) ProjectDimension() Dimension { return s.project }

// ViewportDimension returns the last observed viewport size.
func (s *EditSession) ViewportDimension() Dimension { return s.viewport }

// LayerCount returns the number of layers.
func (s *EditSession) LayerCount() int { return len(s.layers) }

// Layers returns copies of the layers in paint order. Mutating the result
// does not affect the session.
func (s *EditSession) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.clone()
	}
	return out
}

// Project returns a snapshot of the document.
func (s *EditSession) Project() Project {
	return Project{Layers: s.Layers(), Dimension: s.project}
}

// Layer returns a copy of the layer with the given id.
func (s *EditSession) Layer(id string) (Layer, bool) {
	l := s.find(id)
	if l == nil {
		return nil, false
	}
	return l.clone(), true
}

// SelectedLayerID returns the current selection. The id may name a layer
// that is not in the project; see SelectLayer.
func (s *EditSession) SelectedLayerID() (string, bool) {
	return s.selected, s.selected != ""
}

// SelectedLayer returns a copy of the selected layer if it exists.
func (s *EditSession) SelectedLayer() (Layer, bool) {
	if s.selected == "" {
		return nil, false
	}
	return s.Layer(s.selected)
}

// --- internal ---

func (s *EditSession) indexOf(id string) int {
	for i, l := range s.layers {
		if l.LayerID() == id {
			return i
		}
	}
	return -1
}

func (s *EditSession) find(id string) Layer {
	if i := s.indexOf(id); i >= 0 {
		return s.layers[i]
	}
	return nil
}

// paintOrder exposes the live layers to the render pipeline and hit
// testing without copying. Callers must not retain or mutate them.
func (s *EditSession) paintOrder() []Layer {
	return s.layers
}

func (s *EditSession) missing(op, id string) {
	s.log.Debug("mutation ignored",
		zap.String("op", op),
		zap.String("layer", id),
		zap.Error(ErrLayerNotFound))
}
