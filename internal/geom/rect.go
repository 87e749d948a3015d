package geom

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle given by its minimum corner and size.
// A Rect with negative size is not normalized; use Canon before comparing.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromCorners returns the normalized rectangle spanning a and b.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

// RectFromCenter returns the rectangle centered on c with half extents hw, hh.
func RectFromCenter(c Point, hw, hh float64) Rect {
	return Rect{X: c.X - hw, Y: c.Y - hh, W: 2 * hw, H: 2 * hh}
}

// BoundsOf returns the bounding box of pts and false if pts is empty.
func BoundsOf(pts []Point) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

func (r Rect) Min() Point    { return Point{X: r.X, Y: r.Y} }
func (r Rect) Max() Point    { return Point{X: r.X + r.W, Y: r.Y + r.H} }
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Canon returns r with non-negative width and height.
func (r Rect) Canon() Rect { return RectFromCorners(r.Min(), r.Max()) }

// Empty reports whether r has zero area.
func (r Rect) Empty() bool { return r.W == 0 || r.H == 0 }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Intersects reports whether r and o overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return !(r.X+r.W < o.X || o.X+o.W < r.X ||
		r.Y+r.H < o.Y || o.Y+o.H < r.Y)
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Inflate grows r by d on every side. Negative d shrinks it.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Translate moves r by v.
func (r Rect) Translate(v Point) Rect {
	return Rect{X: r.X + v.X, Y: r.Y + v.Y, W: r.W, H: r.H}
}

// Corners returns the four corners clockwise on a y-down canvas starting
// at the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
	}
}

// IsFinite reports whether all fields are finite.
func (r Rect) IsFinite() bool {
	return Point{X: r.X, Y: r.Y}.IsFinite() && Point{X: r.W, Y: r.H}.IsFinite()
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.X, r.Y, r.W, r.H)
}
