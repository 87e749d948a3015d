// Package transform computes selection bounds, handle positions and the new
// geometry produced by move, resize and rotate gestures.
package transform

import (
	"errors"
	"fmt"
	"math"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/state"
)

// ErrInvalidGeometry rejects a resize of a zero-size box along an axis the
// handle changes, or any non-finite result.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Handle identifies a grab point on a selection.
type Handle uint8

const (
	HandleNone Handle = iota
	TopLeft
	TopMiddle
	TopRight
	MiddleLeft
	MiddleRight
	BottomLeft
	BottomMiddle
	BottomRight
	Rotate
)

var handleNames = [...]string{"none", "top-left", "top-middle", "top-right", "middle-left",
	"middle-right", "bottom-left", "bottom-middle", "bottom-right", "rotate"}

func (h Handle) String() string {
	if int(h) < len(handleNames) {
		return handleNames[h]
	}
	return fmt.Sprintf("handle(%d)", uint8(h))
}

// IsCorner reports whether h moves two edges.
func (h Handle) IsCorner() bool {
	return h == TopLeft || h == TopRight || h == BottomLeft || h == BottomRight
}

// IsEdge reports whether h moves a single edge.
func (h Handle) IsEdge() bool {
	return h == TopMiddle || h == BottomMiddle || h == MiddleLeft || h == MiddleRight
}

// axes returns which edge each axis moves: -1 the min edge, +1 the max
// edge, 0 untouched.
func (h Handle) axes() (sx, sy int) {
	switch h {
	case TopLeft:
		return -1, -1
	case TopMiddle:
		return 0, -1
	case TopRight:
		return 1, -1
	case MiddleLeft:
		return -1, 0
	case MiddleRight:
		return 1, 0
	case BottomLeft:
		return -1, 1
	case BottomMiddle:
		return 0, 1
	case BottomRight:
		return 1, 1
	}
	return 0, 0
}

// Handles returns the handle positions of rect rotated by angle degrees:
// the four corners and edge midpoints of the rotated quad, plus a rotate
// handle rotateOffset units outward from the bottom edge midpoint.
func Handles(rect geom.Rect, angle, rotateOffset float64) map[Handle]geom.Point {
	c := state.RotatedCorners(rect, angle)
	tl, tr, br, bl := c[0], c[1], c[2], c[3]
	mid := func(a, b geom.Point) geom.Point { return a.Lerp(b, 0.5) }

	bottom := mid(bl, br)
	// Outward normal of the bottom edge: the unrotated +Y axis, rotated.
	normal := geom.Pt(0, 1).RotateAbout(geom.Point{}, angle)

	return map[Handle]geom.Point{
		TopLeft:      tl,
		TopMiddle:    mid(tl, tr),
		TopRight:     tr,
		MiddleLeft:   mid(tl, bl),
		MiddleRight:  mid(tr, br),
		BottomLeft:   bl,
		BottomMiddle: bottom,
		BottomRight:  br,
		Rotate:       bottom.Add(normal.Mul(rotateOffset)),
	}
}

// HandleAt returns the handle within radius of p, preferring the closest.
func HandleAt(handles map[Handle]geom.Point, p geom.Point, radius float64) Handle {
	best, bestD := HandleNone, radius*radius
	for h := TopLeft; h <= Rotate; h++ {
		hp, ok := handles[h]
		if !ok {
			continue
		}
		if d := hp.DistSq(p); d <= bestD {
			best, bestD = h, d
		}
	}
	return best
}

// PointInRotatedRect reports whether p lies inside rect rotated by angle
// degrees about its center.
func PointInRotatedRect(p geom.Point, rect geom.Rect, angle float64) bool {
	return rect.Contains(p.RotateAbout(rect.Center(), -angle))
}

// Bounds returns the union of the bounds of items.
func Bounds(items []state.Item) (geom.Rect, error) {
	if len(items) == 0 {
		return geom.Rect{}, fmt.Errorf("%w: empty selection", ErrInvalidGeometry)
	}
	r := items[0].Bounds()
	for _, it := range items[1:] {
		r = r.Union(it.Bounds())
	}
	if !r.IsFinite() {
		return geom.Rect{}, fmt.Errorf("%w: non-finite bounds", ErrInvalidGeometry)
	}
	return r, nil
}

// Frame returns the rect and angle handles should be drawn for. A single
// rect-based item is framed by its own rotated rect; anything else by the
// axis-aligned union.
func Frame(items []state.Item) (geom.Rect, float64, error) {
	if len(items) == 1 {
		if r, a, ok := RectOf(items[0]); ok {
			return r, a, nil
		}
	}
	r, err := Bounds(items)
	return r, 0, err
}

// RectOf returns the unrotated rect and angle of a rect-based item.
func RectOf(it state.Item) (geom.Rect, float64, bool) {
	switch v := it.(type) {
	case *state.Image:
		return v.Rect, v.Angle, true
	case *state.Shape:
		if v.Shape.RectBased() {
			return v.Rect, v.Angle, true
		}
	}
	return geom.Rect{}, 0, false
}

// normAngle folds a in degrees into (-180, 180].
func normAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
