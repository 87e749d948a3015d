package board

import (
	"slices"

	"VectorBoard/internal/state"
)

// Selection is an ordered set of item IDs.
type Selection struct {
	ids []state.ID
}

func (sel *Selection) IDs() []state.ID { return slices.Clone(sel.ids) }
func (sel *Selection) Len() int        { return len(sel.ids) }
func (sel *Selection) Has(id state.ID) bool {
	return slices.Contains(sel.ids, id)
}

func (sel *Selection) Add(id state.ID) {
	if !sel.Has(id) {
		sel.ids = append(sel.ids, id)
	}
}

func (sel *Selection) Remove(id state.ID) {
	sel.ids = slices.DeleteFunc(sel.ids, func(x state.ID) bool { return x == id })
}

// Toggle adds id if absent and removes it otherwise.
func (sel *Selection) Toggle(id state.ID) {
	if sel.Has(id) {
		sel.Remove(id)
	} else {
		sel.Add(id)
	}
}

func (sel *Selection) Set(ids ...state.ID) {
	sel.ids = sel.ids[:0]
	for _, id := range ids {
		sel.Add(id)
	}
}

func (sel *Selection) Clear() { sel.ids = nil }

// prune drops IDs that no longer resolve, e.g. after an undo removed them.
func (sel *Selection) prune(scene *state.Scene) {
	sel.ids = slices.DeleteFunc(sel.ids, func(id state.ID) bool {
		_, err := scene.Get(id)
		return err != nil
	})
}

// items returns the live payloads of the selection in selection order.
func (sel *Selection) items(scene *state.Scene) ([]state.ID, []state.Item) {
	ids := make([]state.ID, 0, len(sel.ids))
	items := make([]state.Item, 0, len(sel.ids))
	for _, id := range sel.ids {
		it, err := scene.Get(id)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		items = append(items, it)
	}
	return ids, items
}

// Selection returns the selected IDs.
func (s *Session) Selection() []state.ID { return s.sel.IDs() }

// Select replaces the selection. Unknown IDs are ignored.
func (s *Session) Select(ids ...state.ID) {
	s.sel.Set(ids...)
	s.sel.prune(s.scene)
	s.notify()
}

// SelectAll selects every item in paint order.
func (s *Session) SelectAll() {
	var ids []state.ID
	s.scene.Each(func(id state.ID, _ state.Item) bool {
		ids = append(ids, id)
		return true
	})
	s.Select(ids...)
}
