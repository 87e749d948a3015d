package board

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"VectorBoard/internal/eraser"
	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
	"VectorBoard/internal/transform"
	"VectorBoard/internal/undo"
)

// EraseAlong erases along path with radius in world units as a single
// command and returns the number of affected items.
func (s *Session) EraseAlong(path []geom.Point, radius float64) (int, error) {
	cs := eraser.Plan(s.scene, path, radius)
	if cs.Len() == 0 {
		return 0, nil
	}
	err := s.history.Do(undo.NewErase(cs))
	s.sel.prune(s.scene)
	s.notify()
	if err != nil {
		return 0, err
	}
	return cs.Len(), nil
}

// AddShape inserts sh. Zero color and width are taken from the current
// style.
func (s *Session) AddShape(sh *state.Shape) (state.ID, error) {
	sh = sh.Clone().(*state.Shape)
	if sh.Color == (color.RGBA{}) {
		sh.Color = s.style.Color
	}
	if sh.Width == 0 {
		sh.Width = s.style.Width
	}
	if !sh.Shape.RectBased() && len(sh.Points) < 2 {
		return state.ID{}, fmt.Errorf("%w: %s needs two points", transform.ErrInvalidGeometry, sh.Shape)
	}
	if !sh.Bounds().IsFinite() {
		return state.ID{}, fmt.Errorf("%w: %s bounds", transform.ErrInvalidGeometry, sh.Shape)
	}
	defer s.notify()
	return s.add(sh)
}

// AddImage places img in rect. An empty rect takes the image's own size at
// rect's origin.
func (s *Session) AddImage(path string, img image.Image, rect geom.Rect) (state.ID, error) {
	if rect.Empty() && img != nil {
		b := img.Bounds()
		rect = geom.R(rect.X, rect.Y, float64(b.Dx()), float64(b.Dy()))
	}
	rect = rect.Canon()
	if rect.Empty() || !rect.IsFinite() {
		return state.ID{}, fmt.Errorf("%w: image rect %s", transform.ErrInvalidGeometry, rect)
	}
	defer s.notify()
	return s.add(&state.Image{Rect: rect, Path: path, Pixmap: img})
}

// DeleteSelection removes the selected items.
func (s *Session) DeleteSelection() error {
	ids, _ := s.sel.items(s.scene)
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	s.abandon()
	err := s.history.Do(undo.NewDelete(ids...))
	s.sel.prune(s.scene)
	s.notify()
	return err
}

// ClearAll removes every item. It is a no-op on an empty scene.
func (s *Session) ClearAll() error {
	if s.scene.Count() == 0 {
		return nil
	}
	s.abandon()
	err := s.history.Do(undo.NewClearAll())
	s.sel.Clear()
	s.notify()
	return err
}

// placedSelection returns the selected IDs with their positions, ascending.
func (s *Session) placedSelection() []refID {
	var out []refID
	for _, id := range s.sel.ids {
		ref, err := s.scene.RefOf(id)
		if err != nil {
			continue
		}
		out = append(out, refID{ref, id})
	}
	slices.SortFunc(out, func(a, b refID) int {
		if a.ref.Kind != b.ref.Kind {
			return int(a.ref.Kind) - int(b.ref.Kind)
		}
		return a.ref.Index - b.ref.Index
	})
	return out
}

type refID struct {
	ref state.Ref
	id  state.ID
}

// BringToFront moves the selected items to the top of their collections,
// keeping their relative order.
func (s *Session) BringToFront() error {
	placed := s.placedSelection()
	if len(placed) == 0 {
		return ErrNothingSelected
	}
	cmds := make([]undo.Command, 0, len(placed))
	for _, p := range placed {
		cmds = append(cmds, undo.NewReorder(p.id, s.scene.Len(p.ref.Kind)-1))
	}
	return s.reorder("bring to front", cmds)
}

// SendToBack moves the selected items to the bottom of their collections,
// keeping their relative order.
func (s *Session) SendToBack() error {
	placed := s.placedSelection()
	if len(placed) == 0 {
		return ErrNothingSelected
	}
	cmds := make([]undo.Command, 0, len(placed))
	for i := len(placed) - 1; i >= 0; i-- {
		cmds = append(cmds, undo.NewReorder(placed[i].id, 0))
	}
	return s.reorder("send to back", cmds)
}

func (s *Session) reorder(name string, cmds []undo.Command) error {
	s.abandon()
	err := s.history.Do(undo.NewGroup(name, cmds...))
	s.notify()
	return err
}

// SetStyle makes st the style of new items and applies it to the selected
// lines, shapes and curves as one command.
func (s *Session) SetStyle(st Style) error {
	s.abandon()
	s.style = st
	ids, items := s.sel.items(s.scene)
	var (
		keep  []state.ID
		orig  []state.Item
		final []state.Item
	)
	for i, it := range items {
		restyled, ok := restyle(it, st)
		if !ok {
			continue
		}
		keep = append(keep, ids[i])
		orig = append(orig, it)
		final = append(final, restyled)
	}
	defer s.notify()
	if len(keep) == 0 {
		return nil
	}
	cmd, err := undo.NewModify(undo.NameStyle, keep, orig, final)
	if err != nil {
		return err
	}
	return s.history.Do(cmd)
}

func restyle(it state.Item, st Style) (state.Item, bool) {
	out := it.Clone()
	switch v := out.(type) {
	case *state.Line:
		v.Color, v.Width = st.Color, st.Width
	case *state.Shape:
		v.Color, v.Width, v.Style = st.Color, st.Width, st.LineStyle
		v.Fill = nil
		if st.Fill != nil {
			f := *st.Fill
			v.Fill = &f
		}
	case *state.Curve:
		v.Color, v.Thickness = st.Color, st.Width
	default:
		return nil, false
	}
	return out, true
}
