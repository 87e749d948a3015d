package transform

import (
	"math"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
)

func mapPoints(pts []geom.Point, f func(geom.Point) geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = f(p)
	}
	return out
}

// MapItem returns a copy of it with every defining point passed through m.
// Rect-based items map their center and scale their local axes by the
// mapping's stretch along each axis, keeping the angle.
func MapItem(it state.Item, m Mapping) state.Item {
	out := it.Clone()
	switch v := out.(type) {
	case *state.Line:
		v.Points = mapPoints(v.Points, m.Apply)
	case *state.Curve:
		v.Spline.ControlPoints = mapPoints(v.Spline.ControlPoints, m.Apply)
	case *state.Shape:
		if v.Shape.RectBased() {
			v.Rect = mapRect(v.Rect, v.Angle, m)
		} else {
			v.Points = mapPoints(v.Points, m.Apply)
		}
	case *state.Image:
		v.Rect = mapRect(v.Rect, v.Angle, m)
	}
	return out
}

func mapRect(r geom.Rect, angle float64, m Mapping) geom.Rect {
	sin, cos := math.Sincos(geom.Radians(angle))
	kx := math.Hypot(m.ScaleX*cos, m.ScaleY*sin)
	ky := math.Hypot(m.ScaleX*sin, m.ScaleY*cos)
	return geom.RectFromCenter(m.Apply(r.Center()), r.W*kx/2, r.H*ky/2)
}

// Translate returns a copy of it moved by d.
func Translate(it state.Item, d geom.Point) state.Item {
	return MapItem(it, Mapping{ScaleX: 1, ScaleY: 1, Delta: d})
}

// RotateItem returns a copy of it rotated about center by deg degrees.
// Rect-based items move their center and accumulate the angle.
func RotateItem(it state.Item, center geom.Point, deg float64) state.Item {
	out := it.Clone()
	rot := func(p geom.Point) geom.Point { return p.RotateAbout(center, deg) }
	rotRect := func(r geom.Rect, angle float64) (geom.Rect, float64) {
		c := rot(r.Center())
		return geom.RectFromCenter(c, r.W/2, r.H/2), normAngle(angle + deg)
	}
	switch v := out.(type) {
	case *state.Line:
		v.Points = mapPoints(v.Points, rot)
	case *state.Curve:
		v.Spline.ControlPoints = mapPoints(v.Spline.ControlPoints, rot)
	case *state.Shape:
		if v.Shape.RectBased() {
			v.Rect, v.Angle = rotRect(v.Rect, v.Angle)
		} else {
			v.Points = mapPoints(v.Points, rot)
		}
	case *state.Image:
		v.Rect, v.Angle = rotRect(v.Rect, v.Angle)
	}
	return out
}

// WithRect returns a copy of a rect-based item with its unrotated rect
// replaced. Other items are returned unchanged.
func WithRect(it state.Item, r geom.Rect) state.Item {
	out := it.Clone()
	switch v := out.(type) {
	case *state.Image:
		v.Rect = r
	case *state.Shape:
		if v.Shape.RectBased() {
			v.Rect = r
		}
	}
	return out
}
