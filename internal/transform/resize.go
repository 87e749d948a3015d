package transform

import (
	"fmt"
	"math"

	"VectorBoard/internal/geom"
)

// ResizeBox moves the edge(s) of the axis-aligned box selected by h to
// pointer. Edges never cross: each stays at least minSize from its
// opposite. With aspectLocked on a corner handle the box keeps its
// width/height ratio and the opposite corner stays put.
func ResizeBox(box geom.Rect, h Handle, pointer geom.Point, minSize float64, aspectLocked bool) (geom.Rect, error) {
	sx, sy := h.axes()
	if sx == 0 && sy == 0 {
		return box, fmt.Errorf("%w: %s is not a resize handle", ErrInvalidGeometry, h)
	}
	box = box.Canon()
	if (sx != 0 && box.W == 0) || (sy != 0 && box.H == 0) {
		return box, fmt.Errorf("%w: zero-size box %s resized by %s", ErrInvalidGeometry, box, h)
	}
	if !pointer.IsFinite() {
		return box, fmt.Errorf("%w: pointer %s", ErrInvalidGeometry, pointer)
	}

	minX, minY := box.X, box.Y
	maxX, maxY := box.X+box.W, box.Y+box.H
	switch sx {
	case -1:
		minX = math.Min(pointer.X, maxX-minSize)
	case 1:
		maxX = math.Max(pointer.X, minX+minSize)
	}
	switch sy {
	case -1:
		minY = math.Min(pointer.Y, maxY-minSize)
	case 1:
		maxY = math.Max(pointer.Y, minY+minSize)
	}

	if aspectLocked && h.IsCorner() {
		ratio := box.W / box.H
		w, hgt := maxX-minX, maxY-minY
		if w/ratio > hgt {
			hgt = w / ratio
		} else {
			w = hgt * ratio
		}
		if sx < 0 {
			minX = maxX - w
		} else {
			maxX = minX + w
		}
		if sy < 0 {
			minY = maxY - hgt
		} else {
			maxY = minY + hgt
		}
	}
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, nil
}

// Mapping is the affine remap from an old selection box to a new one:
// p' = (p - Center) * Scale + Center + Delta.
type Mapping struct {
	Center geom.Point
	ScaleX float64
	ScaleY float64
	Delta  geom.Point
}

// Remap builds the Mapping taking old onto new. An axis with zero extent
// keeps scale 1.
func Remap(old, new geom.Rect) Mapping {
	m := Mapping{Center: old.Center(), ScaleX: 1, ScaleY: 1}
	if old.W != 0 {
		m.ScaleX = new.W / old.W
	}
	if old.H != 0 {
		m.ScaleY = new.H / old.H
	}
	m.Delta = new.Center().Sub(old.Center())
	return m
}

// Apply maps p.
func (m Mapping) Apply(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X-m.Center.X)*m.ScaleX + m.Center.X + m.Delta.X,
		Y: (p.Y-m.Center.Y)*m.ScaleY + m.Center.Y + m.Delta.Y,
	}
}

// ResizeRotated resizes rect, rotated by angle degrees about its center, by
// dragging handle h to pointer. The pointer is first taken into the rect's
// local, center-relative frame.
//
// A corner with aspectLocked keeps the width/height ratio and the original
// center: the dominant axis is the one where dist_x/aspect or dist_y is
// larger, and minSize is enforced on both axes by growing the other one.
// Otherwise the handle's edge(s) move in local space, clamped at minSize
// from the opposite edge, which stays fixed.
func ResizeRotated(rect geom.Rect, angle float64, h Handle, pointer geom.Point, minSize float64, aspectLocked bool) (geom.Rect, error) {
	sx, sy := h.axes()
	if sx == 0 && sy == 0 {
		return rect, fmt.Errorf("%w: %s is not a resize handle", ErrInvalidGeometry, h)
	}
	rect = rect.Canon()
	if !pointer.IsFinite() {
		return rect, fmt.Errorf("%w: pointer %s", ErrInvalidGeometry, pointer)
	}
	c := rect.Center()
	local := pointer.RotateAbout(c, -angle).Sub(c)
	hw, hh := rect.W/2, rect.H/2

	if aspectLocked && h.IsCorner() {
		if rect.W <= 0 || rect.H <= 0 {
			return rect, fmt.Errorf("%w: zero-size rect %s", ErrInvalidGeometry, rect)
		}
		aspect := rect.W / rect.H
		distX, distY := math.Abs(local.X), math.Abs(local.Y)
		var nhw, nhh float64
		if distX/aspect > distY {
			nhw, nhh = distX, distX/aspect
		} else {
			nhw, nhh = distY*aspect, distY
		}
		if nhw <= 0 || nhh <= 0 {
			// Pointer on the center: keep the shape, let the floor size it.
			nhw, nhh = aspect, 1
		}
		if k := math.Max(minSize/(2*nhw), minSize/(2*nhh)); k > 1 {
			nhw *= k
			nhh *= k
		}
		return geom.RectFromCenter(c, nhw, nhh), nil
	}

	left, right, top, bottom := -hw, hw, -hh, hh
	switch sx {
	case -1:
		left = math.Min(local.X, right-minSize)
	case 1:
		right = math.Max(local.X, left+minSize)
	}
	switch sy {
	case -1:
		top = math.Min(local.Y, bottom-minSize)
	case 1:
		bottom = math.Max(local.Y, top+minSize)
	}
	lc := geom.Pt((left+right)/2, (top+bottom)/2)
	wc := c.Add(lc).RotateAbout(c, angle)
	return geom.RectFromCenter(wc, (right-left)/2, (bottom-top)/2), nil
}

// RotationDelta returns the angle in degrees swept from start to current as
// seen from center.
func RotationDelta(center, start, current geom.Point) float64 {
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(current.Y-center.Y, current.X-center.X)
	return normAngle(geom.Degrees(a1 - a0))
}
