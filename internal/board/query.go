package board

import (
	"math"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/spline"
	"VectorBoard/internal/state"
	"VectorBoard/internal/transform"
)

// HitTest returns the topmost item under p within the pick tolerance.
func (s *Session) HitTest(p geom.Point) (state.Ref, state.ID, bool) {
	tol := s.worldTol(s.cfg.Edit.PickTolerancePx)
	hits := s.scene.Query(geom.Rect{X: p.X, Y: p.Y}.Inflate(tol))
	for i := len(hits) - 1; i >= 0; i-- {
		if hitItem(hits[i].Item, p, tol) {
			return hits[i].Ref, hits[i].ID, true
		}
	}
	return state.Ref{}, state.ID{}, false
}

func hitItem(it state.Item, p geom.Point, tol float64) bool {
	switch v := it.(type) {
	case *state.Image:
		return transform.PointInRotatedRect(p, v.Rect.Inflate(tol), v.Angle)
	case *state.Shape:
		switch v.Shape {
		case state.ShapeRectangle:
			return transform.PointInRotatedRect(p, v.Rect.Inflate(tol), v.Angle)
		case state.ShapeCircle:
			return inEllipse(p, v.Rect, v.Angle, tol)
		}
		return nearPolyline(p, state.Outline(v), tol+float64(v.Width)/2)
	case *state.Line:
		return nearPolyline(p, v.Points, tol+float64(v.Width)/2)
	case *state.Curve:
		return spline.Distance(v.Spline, p, state.CurveResolution()) <= tol+float64(v.Thickness)/2
	}
	return false
}

func nearPolyline(p geom.Point, pts []geom.Point, tol float64) bool {
	return geom.PolylineDistSq(p, pts) <= tol*tol
}

// inEllipse tests p against the ellipse inscribed in r, grown by tol and
// rotated by angle degrees.
func inEllipse(p geom.Point, r geom.Rect, angle, tol float64) bool {
	c := r.Center()
	l := p.RotateAbout(c, -angle).Sub(c)
	a, b := math.Abs(r.W)/2+tol, math.Abs(r.H)/2+tol
	if a == 0 || b == 0 {
		return false
	}
	return (l.X*l.X)/(a*a)+(l.Y*l.Y)/(b*b) <= 1
}

func (s *Session) itemsOf(ids []state.ID) ([]state.Item, error) {
	items := make([]state.Item, 0, len(ids))
	for _, id := range ids {
		it, err := s.scene.Get(id)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// BBoxOf returns the axis-aligned bounds of the given items.
func (s *Session) BBoxOf(ids []state.ID) (geom.Rect, error) {
	items, err := s.itemsOf(ids)
	if err != nil {
		return geom.Rect{}, err
	}
	return transform.Bounds(items)
}

// HandlesFor returns the handle positions for the given items. A single
// rotated rectangle, circle or image gets handles on its own rotated frame.
func (s *Session) HandlesFor(ids []state.ID) (map[transform.Handle]geom.Point, error) {
	items, err := s.itemsOf(ids)
	if err != nil {
		return nil, err
	}
	r, angle, err := transform.Frame(items)
	if err != nil {
		return nil, err
	}
	return transform.Handles(r, angle, s.worldTol(s.cfg.Edit.RotateHandleOffset)), nil
}

// ControlPoint addresses one control point of a curve.
type ControlPoint struct {
	Curve state.ID
	Index int
	Pos   geom.Point
}

// PickControlPoint finds the control point nearest p within the pick
// tolerance over every curve in the scene.
func (s *Session) PickControlPoint(p geom.Point) (ControlPoint, bool) {
	return s.pickControlPoint(p, nil)
}

// pickControlPoint scans curves in collection order, restricted to keep
// when it is non-nil. At equal distance a later curve replaces an earlier
// match: the one painted on top wins.
func (s *Session) pickControlPoint(p geom.Point, keep func(state.ID) bool) (ControlPoint, bool) {
	tol := s.worldTol(s.cfg.Edit.PickTolerancePx)
	best, bestD, found := ControlPoint{}, tol*tol, false
	for _, id := range s.scene.IDs(state.KindCurve) {
		if keep != nil && !keep(id) {
			continue
		}
		it, err := s.scene.Get(id)
		if err != nil {
			continue
		}
		for i, cp := range it.(*state.Curve).Spline.ControlPoints {
			if d := cp.DistSq(p); d <= bestD {
				best, bestD, found = ControlPoint{Curve: id, Index: i, Pos: cp}, d, true
			}
		}
	}
	return best, found
}

// EditablePoints returns the control points of the selected curves, for
// drawing.
func (s *Session) EditablePoints() []ControlPoint {
	var out []ControlPoint
	for _, id := range s.sel.ids {
		it, err := s.scene.Get(id)
		if err != nil {
			continue
		}
		if c, ok := it.(*state.Curve); ok {
			for i, cp := range c.Spline.ControlPoints {
				out = append(out, ControlPoint{Curve: id, Index: i, Pos: cp})
			}
		}
	}
	return out
}
