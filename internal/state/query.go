package state

import "VectorBoard/internal/geom"

// Hit is an item found by a spatial query.
type Hit struct {
	ID     ID
	Ref    Ref
	Item   Item
	Bounds geom.Rect
}

// Query returns every item whose bounds intersect area, in paint order.
func (s *Scene) Query(area geom.Rect) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Hit
	for k, ids := range s.order {
		for i, id := range ids {
			it := s.slots[id.Slot].item
			b := it.Bounds()
			if area.Intersects(b) {
				out = append(out, Hit{ID: id, Ref: Ref{Kind: Kind(k), Index: i}, Item: it, Bounds: b})
			}
		}
	}
	return out
}

// Within returns every item whose bounds lie entirely inside area.
func (s *Scene) Within(area geom.Rect) []ID {
	var out []ID
	for _, h := range s.Query(area) {
		if area.Contains(h.Bounds.Min()) && area.Contains(h.Bounds.Max()) {
			out = append(out, h.ID)
		}
	}
	return out
}

// Bounds returns the union of all item bounds and false for an empty scene.
func (s *Scene) Bounds() (geom.Rect, bool) {
	var r geom.Rect
	found := false
	s.Each(func(_ ID, it Item) bool {
		if b := it.Bounds(); found {
			r = r.Union(b)
		} else {
			r, found = b, true
		}
		return true
	})
	return r, found
}
