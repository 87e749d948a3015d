package undo

import (
	"errors"
	"fmt"
	"slices"

	"VectorBoard/internal/eraser"
	"VectorBoard/internal/state"
)

// Names of Modify commands.
const (
	NameMove      = "move"
	NameResize    = "resize"
	NameRotate    = "rotate"
	NameEditPoint = "edit-point"
	NameStyle     = "style"
)

// placed is an item together with where it lived.
type placed struct {
	id    state.ID
	kind  state.Kind
	index int
	item  state.Item
}

// byPosition orders ascending by collection then index.
func byPosition(a, b placed) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	return a.index - b.index
}

// restoreAll revives ps in ascending order so recorded indices are valid.
func restoreAll(s *state.Scene, ps []placed) error {
	ps = slices.Clone(ps)
	slices.SortFunc(ps, byPosition)
	var errs []error
	for _, p := range ps {
		if err := s.Restore(p.id, p.item.Clone(), p.index); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Add inserts new items at the end of their collections.
type Add struct {
	items  []state.Item
	placed []placed
}

// NewAdd records items for insertion. The command keeps its own copies.
func NewAdd(items ...state.Item) *Add {
	c := &Add{items: make([]state.Item, len(items))}
	for i, it := range items {
		c.items[i] = it.Clone()
	}
	return c
}

func (c *Add) Name() string { return "add" }

// IDs returns the IDs assigned on first execution.
func (c *Add) IDs() []state.ID {
	out := make([]state.ID, len(c.placed))
	for i, p := range c.placed {
		out[i] = p.id
	}
	return out
}

// Execute appends the items the first time and afterwards puts them back
// under the same IDs at the recorded indices.
func (c *Add) Execute(s *state.Scene) error {
	if c.placed != nil {
		return restoreAll(s, c.placed)
	}
	c.placed = make([]placed, 0, len(c.items))
	for _, it := range c.items {
		id := s.Insert(it.Clone())
		ref, err := s.RefOf(id)
		if err != nil {
			return err
		}
		c.placed = append(c.placed, placed{id: id, kind: ref.Kind, index: ref.Index, item: it})
	}
	return nil
}

func (c *Add) Undo(s *state.Scene) error {
	var errs []error
	for i := len(c.placed) - 1; i >= 0; i-- {
		if _, _, err := s.Remove(c.placed[i].id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes items and can put them back where they were.
type Delete struct {
	ids     []state.ID
	removed []placed
}

func NewDelete(ids ...state.ID) *Delete {
	return &Delete{ids: slices.Clone(ids)}
}

func (c *Delete) Name() string { return "delete" }

// Execute removes the items highest index first, so every recorded index is
// the item's position before the deletion.
func (c *Delete) Execute(s *state.Scene) error {
	var errs []error
	targets := make([]placed, 0, len(c.ids))
	for _, id := range c.ids {
		ref, err := s.RefOf(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		targets = append(targets, placed{id: id, kind: ref.Kind, index: ref.Index})
	}
	slices.SortFunc(targets, func(a, b placed) int { return byPosition(b, a) })

	c.removed = c.removed[:0]
	for _, t := range targets {
		it, idx, err := s.Remove(t.id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.index, t.item = idx, it
		c.removed = append(c.removed, t)
	}
	return errors.Join(errs...)
}

func (c *Delete) Undo(s *state.Scene) error {
	return restoreAll(s, c.removed)
}

// Modify swaps whole payloads between an original and a final snapshot.
// It backs move, resize, rotate, control-point and style edits.
type Modify struct {
	name     string
	ids      []state.ID
	original []state.Item
	final    []state.Item
}

// NewModify records deep copies of original and final, which must be the
// same length as ids.
func NewModify(name string, ids []state.ID, original, final []state.Item) (*Modify, error) {
	if len(original) != len(ids) || len(final) != len(ids) {
		return nil, fmt.Errorf("%s: %d ids, %d originals, %d finals", name, len(ids), len(original), len(final))
	}
	c := &Modify{
		name:     name,
		ids:      slices.Clone(ids),
		original: make([]state.Item, len(ids)),
		final:    make([]state.Item, len(ids)),
	}
	for i := range ids {
		c.original[i] = original[i].Clone()
		c.final[i] = final[i].Clone()
	}
	return c, nil
}

func (c *Modify) Name() string { return c.name }

// Original returns the recorded pre-state of the i-th item.
func (c *Modify) Original(i int) state.Item { return c.original[i] }

// Final returns the recorded post-state of the i-th item.
func (c *Modify) Final(i int) state.Item { return c.final[i] }

// IDs returns the affected items.
func (c *Modify) IDs() []state.ID { return slices.Clone(c.ids) }

func (c *Modify) apply(s *state.Scene, items []state.Item) error {
	var errs []error
	for i, id := range c.ids {
		if err := s.Set(id, items[i].Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Modify) Execute(s *state.Scene) error { return c.apply(s, c.final) }
func (c *Modify) Undo(s *state.Scene) error    { return c.apply(s, c.original) }

// Erase applies an eraser change set.
type Erase struct {
	changes eraser.ChangeSet
}

func NewErase(cs eraser.ChangeSet) *Erase {
	return &Erase{changes: cs}
}

func (c *Erase) Name() string { return "erase" }

// Execute works from the highest index down so planned indices stay valid.
func (c *Erase) Execute(s *state.Scene) error {
	var errs []error
	for _, k := range state.Kinds {
		changes := c.changes.Sorted(k)
		for i := len(changes) - 1; i >= 0; i-- {
			ch := changes[i]
			var err error
			if ch.Delete {
				_, _, err = s.Remove(ch.ID)
			} else {
				err = s.Set(ch.ID, ch.Final())
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Erase) Undo(s *state.Scene) error {
	var errs []error
	for _, k := range state.Kinds {
		for _, ch := range c.changes.Sorted(k) {
			var err error
			if ch.Delete {
				err = s.Restore(ch.ID, ch.Original.Clone(), ch.Index)
			} else {
				err = s.Set(ch.ID, ch.Original.Clone())
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ClearAll empties every collection and can restore it verbatim.
type ClearAll struct {
	snap state.Snapshot
}

func NewClearAll() *ClearAll { return &ClearAll{} }

func (c *ClearAll) Name() string { return "clear" }

func (c *ClearAll) Execute(s *state.Scene) error {
	c.snap = s.Snapshot()
	var errs []error
	for _, es := range c.snap {
		for i := len(es) - 1; i >= 0; i-- {
			if _, _, err := s.Remove(es[i].ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *ClearAll) Undo(s *state.Scene) error {
	var errs []error
	for _, es := range c.snap {
		for i, e := range es {
			if err := s.Restore(e.ID, e.Item.Clone(), i); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Reorder moves one item within its collection, changing paint order.
type Reorder struct {
	id       state.ID
	from, to int
}

func NewReorder(id state.ID, to int) *Reorder {
	return &Reorder{id: id, from: -1, to: to}
}

func (c *Reorder) Name() string { return "reorder" }

func (c *Reorder) Execute(s *state.Scene) error {
	ref, err := s.RefOf(c.id)
	if err != nil {
		return err
	}
	c.from = ref.Index
	return s.Move(c.id, c.to)
}

func (c *Reorder) Undo(s *state.Scene) error {
	if c.from < 0 {
		return fmt.Errorf("%w: reorder of %s never executed", state.ErrInvalidIndex, c.id)
	}
	return s.Move(c.id, c.from)
}

// Group runs several commands as one history entry.
type Group struct {
	name string
	cmds []Command
}

func NewGroup(name string, cmds ...Command) *Group {
	return &Group{name: name, cmds: cmds}
}

func (g *Group) Name() string { return g.name }

// Len returns the number of grouped commands.
func (g *Group) Len() int { return len(g.cmds) }

func (g *Group) Execute(s *state.Scene) error {
	var errs []error
	for _, c := range g.cmds {
		if err := c.Execute(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (g *Group) Undo(s *state.Scene) error {
	var errs []error
	for i := len(g.cmds) - 1; i >= 0; i-- {
		if err := g.cmds[i].Undo(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", g.cmds[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}
