// Package eraser plans the effect of an eraser stroke on a scene. Planning
// is a pure query: the resulting ChangeSet is applied by an undo command.
package eraser

import (
	"math"
	"slices"

	"VectorBoard/internal/geom"
	"VectorBoard/internal/logx"
	"VectorBoard/internal/state"
)

// Change is the planned outcome for one item.
type Change struct {
	ID       state.ID
	Index    int
	Original state.Item
	// Points is the surviving point list of a partially erased line or
	// path. It is nil when Delete is set.
	Points []geom.Point
	Delete bool
}

// Final returns the item as it looks after the change, or nil when it is
// deleted.
func (c Change) Final() state.Item {
	if c.Delete {
		return nil
	}
	out := c.Original.Clone()
	switch v := out.(type) {
	case *state.Line:
		v.Points = geom.ClonePoints(c.Points)
	case *state.Shape:
		v.Points = geom.ClonePoints(c.Points)
	}
	return out
}

// ChangeSet maps collection to positional index to change.
type ChangeSet map[state.Kind]map[int]Change

// Len returns the number of affected items.
func (cs ChangeSet) Len() int {
	n := 0
	for _, m := range cs {
		n += len(m)
	}
	return n
}

// Sorted returns the changes of kind k ordered by index.
func (cs ChangeSet) Sorted(k state.Kind) []Change {
	m := cs[k]
	out := make([]Change, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Change) int { return a.Index - b.Index })
	return out
}

func (cs ChangeSet) add(k state.Kind, c Change) {
	if cs[k] == nil {
		cs[k] = make(map[int]Change)
	}
	cs[k][c.Index] = c
}

// Plan computes what erasing along path with the given radius would do to
// s. Items are first rejected by bounds against the path's box grown by
// radius. Free lines and path shapes lose the points within radius of the
// path and are deleted when fewer than two remain; every other item that
// survives the rejection is deleted whole.
func Plan(s *state.Scene, path []geom.Point, radius float64) ChangeSet {
	cs := make(ChangeSet)
	area, ok := geom.BoundsOf(path)
	if !ok || radius < 0 || math.IsNaN(radius) {
		return cs
	}
	area = area.Inflate(radius)
	r2 := radius * radius

	for _, hit := range s.Query(area) {
		c := Change{ID: hit.ID, Index: hit.Ref.Index}
		pts, partial := erasable(hit.Item)
		if !partial {
			c.Original, c.Delete = hit.Item.Clone(), true
			cs.add(hit.Ref.Kind, c)
			continue
		}
		kept := make([]geom.Point, 0, len(pts))
		for _, p := range pts {
			if geom.PolylineDistSq(p, path) > r2 {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(pts) {
			continue
		}
		c.Original = hit.Item.Clone()
		if len(kept) < 2 {
			c.Delete = true
		} else {
			c.Points = kept
		}
		cs.add(hit.Ref.Kind, c)
	}
	logx.For("eraser").Debug("planned erase", "path", len(path), "radius", radius, "changes", cs.Len())
	return cs
}

// erasable returns the points of items that can be partially erased.
func erasable(it state.Item) ([]geom.Point, bool) {
	switch v := it.(type) {
	case *state.Line:
		return v.Points, true
	case *state.Shape:
		if v.Shape == state.ShapePath {
			return v.Points, true
		}
	}
	return nil, false
}
