package spline

import (
	"math"

	"VectorBoard/internal/geom"
)

// DefaultResolution is the number of polyline vertices used when callers
// pass a non-positive resolution.
const DefaultResolution = 100

// Evaluate samples s at resolution evenly spaced parameters over its domain
// and returns the resulting polyline. It is a pure function of s.
func Evaluate(s Spline, resolution int) ([]geom.Point, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if resolution < 2 {
		resolution = DefaultResolution
	}
	lo, hi := s.Domain()
	buf := make([]float64, s.Degree+1)
	out := make([]geom.Point, resolution)
	step := (hi - lo) / float64(resolution-1)
	for i := range out {
		u := lo + float64(i)*step
		if i == resolution-1 {
			u = hi
		}
		out[i] = s.pointAt(u, buf)
	}
	return out, nil
}

// Bounds returns the bounding box of the evaluated polyline. If s cannot be
// evaluated the box of its raw control points is used instead.
func Bounds(s Spline, resolution int) geom.Rect {
	if pts, err := Evaluate(s, resolution); err == nil {
		if r, ok := geom.BoundsOf(pts); ok {
			return r
		}
	}
	r, _ := geom.BoundsOf(s.ControlPoints)
	return r
}

// Distance returns the distance from p to the evaluated polyline, or +Inf
// if s cannot be evaluated.
func Distance(s Spline, p geom.Point, resolution int) float64 {
	pts, err := Evaluate(s, resolution)
	if err != nil {
		return math.Inf(1)
	}
	return math.Sqrt(geom.PolylineDistSq(p, pts))
}
