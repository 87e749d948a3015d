package geom

import (
	"fmt"
	"math"
)

// Point is a position or vector in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point      { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point      { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Mul(s float64) Point    { return Point{X: p.X * s, Y: p.Y * s} }
func (p Point) Dot(q Point) float64    { return p.X*q.X + p.Y*q.Y }
func (p Point) Hypot() float64         { return math.Hypot(p.X, p.Y) }
func (p Point) Hypot2() float64        { return p.X*p.X + p.Y*p.Y }
func (p Point) Dist(q Point) float64   { return p.Sub(q).Hypot() }
func (p Point) DistSq(q Point) float64 { return p.Sub(q).Hypot2() }

// Lerp linearly interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Near reports whether p and q are within eps of each other.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// RotateAbout rotates p about center by deg degrees. Positive angles turn
// +X towards +Y, which is clockwise on a y-down canvas.
func (p Point) RotateAbout(center Point, deg float64) Point {
	if deg == 0 {
		return p
	}
	sin, cos := math.Sincos(Radians(deg))
	d := p.Sub(center)
	return Point{
		X: center.X + d.X*cos - d.Y*sin,
		Y: center.Y + d.X*sin + d.Y*cos,
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// SegmentDistSq returns the squared distance from p to the segment ab.
// A zero-length segment degrades to the distance to a.
func SegmentDistSq(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Hypot2()
	if l2 == 0 {
		return p.DistSq(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.DistSq(a.Add(ab.Mul(t)))
}

// PolylineDistSq returns the squared distance from p to the nearest segment
// of the polyline pts. A single point is treated as a degenerate segment.
// It returns +Inf for an empty polyline.
func PolylineDistSq(p Point, pts []Point) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.DistSq(pts[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := SegmentDistSq(p, pts[i-1], pts[i]); d < best {
			best = d
		}
	}
	return best
}

// ClonePoints returns a copy of pts that shares no backing storage.
func ClonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
