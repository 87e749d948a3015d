package board

import (
	"errors"
	"fmt"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
	"VectorBoard/internal/transform"
	"VectorBoard/internal/undo"
)

var (
	ErrNoDrag          = errors.New("no drag in progress")
	ErrNothingSelected = errors.New("nothing selected")
)

type TargetKind uint8

const (
	// TargetBody moves the whole selection.
	TargetBody TargetKind = iota
	// TargetHandle resizes or rotates the selection.
	TargetHandle
	// TargetControlPoint moves one control point of a curve.
	TargetControlPoint
)

// Target is what a drag grabs.
type Target struct {
	Kind   TargetKind
	Handle transform.Handle
	Point  ControlPoint
}

func BodyTarget() Target                     { return Target{Kind: TargetBody} }
func HandleTarget(h transform.Handle) Target { return Target{Kind: TargetHandle, Handle: h} }
func PointTarget(cp ControlPoint) Target     { return Target{Kind: TargetControlPoint, Point: cp} }

// drag holds everything an update needs. Each update is computed from the
// original snapshots, never from the previous update.
type drag struct {
	target  Target
	name    string
	start   geom.Point
	ids     []state.ID
	orig    []state.Item
	frame   geom.Rect
	angle   float64
	aspect  bool
	changed bool
}

// BeginDrag grabs target at p. Body and handle drags act on the current
// selection; a control-point drag acts on that curve alone.
func (s *Session) BeginDrag(t Target, p geom.Point, mods Modifiers) error {
	if s.drag != nil {
		s.CancelDrag()
	}
	d := &drag{target: t, start: p, aspect: mods.Shift}

	switch t.Kind {
	case TargetControlPoint:
		it, err := s.scene.Get(t.Point.Curve)
		if err != nil {
			return err
		}
		c, ok := it.(*state.Curve)
		if !ok || t.Point.Index < 0 || t.Point.Index >= len(c.Spline.ControlPoints) {
			return fmt.Errorf("%w: control point %d of %s", state.ErrInvalidIndex, t.Point.Index, t.Point.Curve)
		}
		d.name = undo.NameEditPoint
		d.ids = []state.ID{t.Point.Curve}
		d.orig = []state.Item{c.Clone()}
	default:
		ids, items := s.sel.items(s.scene)
		if len(items) == 0 {
			return ErrNothingSelected
		}
		frame, angle, err := transform.Frame(items)
		if err != nil {
			return err
		}
		d.ids, d.frame, d.angle = ids, frame, angle
		d.orig = make([]state.Item, len(items))
		for i, it := range items {
			d.orig[i] = it.Clone()
		}
		switch {
		case t.Kind == TargetBody:
			d.name = undo.NameMove
		case t.Handle == transform.Rotate:
			d.name = undo.NameRotate
		case t.Handle == transform.HandleNone:
			return fmt.Errorf("%w: no handle", transform.ErrInvalidGeometry)
		default:
			d.name = undo.NameResize
		}
	}
	s.drag = d
	s.log.Debug("drag started", "op", d.name, "items", len(d.ids))
	return nil
}

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool { return s.drag != nil }

// UpdateDrag applies the drag to the scene live. A resize that would
// produce degenerate geometry is rejected and the last valid geometry stays.
func (s *Session) UpdateDrag(p geom.Point) error {
	d := s.drag
	if d == nil {
		return ErrNoDrag
	}
	if !p.IsFinite() {
		return fmt.Errorf("%w: pointer %s", transform.ErrInvalidGeometry, p)
	}
	finals, changed, err := s.dragResult(d, p)
	if err != nil {
		s.log.Debug("drag update rejected", "op", d.name, "err", err)
		return err
	}
	for _, it := range finals {
		if !it.Bounds().IsFinite() {
			return fmt.Errorf("%w: %s produced non-finite bounds", transform.ErrInvalidGeometry, d.name)
		}
	}
	for i, id := range d.ids {
		if err := s.scene.Set(id, finals[i]); err != nil {
			return err
		}
	}
	d.changed = changed
	s.notify()
	return nil
}

func (s *Session) dragResult(d *drag, p geom.Point) ([]state.Item, bool, error) {
	delta := p.Sub(d.start)
	finals := make([]state.Item, len(d.orig))

	switch {
	case d.target.Kind == TargetControlPoint:
		c := d.orig[0].Clone().(*state.Curve)
		i := d.target.Point.Index
		c.Spline.ControlPoints[i] = c.Spline.ControlPoints[i].Add(delta)
		finals[0] = c
		return finals, delta != (geom.Point{}), nil

	case d.target.Kind == TargetBody:
		for i, it := range d.orig {
			finals[i] = transform.Translate(it, delta)
		}
		return finals, delta != (geom.Point{}), nil

	case d.target.Handle == transform.Rotate:
		center := d.frame.Center()
		deg := transform.RotationDelta(center, d.start, p)
		for i, it := range d.orig {
			finals[i] = transform.RotateItem(it, center, deg)
		}
		return finals, deg != 0, nil
	}

	minSize := s.cfg.Edit.MinSize
	// A rotated item resizes in its own frame about its center; everything
	// else moves the dragged edges and keeps the opposite ones.
	if r, angle, ok := transform.RectOf(d.orig[0]); ok && angle != 0 && len(d.orig) == 1 {
		nr, err := transform.ResizeRotated(r, angle, d.target.Handle, p, minSize, d.aspect)
		if err != nil {
			return nil, false, err
		}
		finals[0] = transform.WithRect(d.orig[0], nr)
		return finals, nr != r, nil
	}
	nb, err := transform.ResizeBox(d.frame, d.target.Handle, p, minSize, d.aspect)
	if err != nil {
		return nil, false, err
	}
	m := transform.Remap(d.frame, nb)
	for i, it := range d.orig {
		finals[i] = transform.MapItem(it, m)
	}
	return finals, nb != d.frame, nil
}

// EndDrag finishes the drag and records it as one Modify command. Nothing
// is recorded, and nil returned, when the drag left everything in place.
func (s *Session) EndDrag() (*undo.Modify, error) {
	d := s.drag
	s.drag = nil
	if d == nil {
		return nil, ErrNoDrag
	}
	defer s.notify()
	if !d.changed {
		s.restore(d)
		return nil, nil
	}
	finals := make([]state.Item, len(d.ids))
	for i, id := range d.ids {
		it, err := s.scene.Get(id)
		if err != nil {
			s.log.Warn("drag target vanished", "id", id, "err", err)
			s.restore(d)
			return nil, err
		}
		finals[i] = it
	}
	cmd, err := undo.NewModify(d.name, d.ids, d.orig, finals)
	if err != nil {
		s.restore(d)
		return nil, err
	}
	s.history.Commit(cmd)
	s.log.Debug("drag committed", "op", d.name, "items", len(d.ids))
	return cmd, nil
}

// CancelDrag puts the original geometry back without recording anything.
func (s *Session) CancelDrag() {
	if d := s.drag; d != nil {
		s.drag = nil
		s.restore(d)
		s.notify()
	}
}

func (s *Session) restore(d *drag) {
	for i, id := range d.ids {
		if err := s.scene.Set(id, d.orig[i].Clone()); err != nil {
			s.log.Debug("restore skipped", "id", id, "err", err)
		}
	}
}
