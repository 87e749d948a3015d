package state

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"VectorBoard/internal/logx"
)

var (
	// ErrStaleID is returned for an ID whose slot is vacant or has been
	// reused by a later generation.
	ErrStaleID = errors.New("stale item id")
	// ErrInvalidIndex is returned for a positional index outside its
	// collection.
	ErrInvalidIndex = errors.New("invalid item index")
)

// ID addresses an item through a generation-checked slot. The zero ID never
// refers to an item.
type ID struct {
	Slot uint32
	Gen  uint32
}

func (id ID) IsZero() bool   { return id.Gen == 0 }
func (id ID) String() string { return fmt.Sprintf("%d@%d", id.Slot, id.Gen) }

// Ref is the positional form of an item address: a collection tag and an
// index into that collection. Refs shift when items are inserted or removed
// before them; hold IDs across edits.
type Ref struct {
	Kind  Kind
	Index int
}

func (r Ref) String() string { return fmt.Sprintf("%s[%d]", r.Kind, r.Index) }

type slot struct {
	gen  uint32
	live bool
	uid  uuid.UUID
	item Item
}

// Scene owns the ordered item collections. Removal leaves a vacant slot
// that keeps its generation, so undo can revive the item under the same ID.
// Vacant slots are only recycled (with a new generation) by Reclaim.
type Scene struct {
	mu       sync.RWMutex
	slots    []slot
	free     []uint32
	order    [kindCount][]ID
	clock    Clock
	OnChange func(rev uint64)
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) lookup(id ID) (*slot, error) {
	if id.IsZero() || int(id.Slot) >= len(s.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleID, id)
	}
	sl := &s.slots[id.Slot]
	if !sl.live || sl.gen != id.Gen {
		return nil, fmt.Errorf("%w: %s", ErrStaleID, id)
	}
	return sl, nil
}

func (s *Scene) changed() {
	rev := s.clock.Tick()
	if s.OnChange != nil {
		s.OnChange(rev)
	}
}

// Revision returns the number of changes applied so far.
func (s *Scene) Revision() uint64 { return s.clock.Now() }

func (s *Scene) alloc(it Item, uid uuid.UUID) ID {
	if uid == uuid.Nil {
		uid = uuid.New()
	}
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		sl := &s.slots[idx]
		sl.live, sl.uid, sl.item = true, uid, it
		return ID{Slot: idx, Gen: sl.gen}
	}
	s.slots = append(s.slots, slot{gen: 1, live: true, uid: uid, item: it})
	return ID{Slot: uint32(len(s.slots) - 1), Gen: 1}
}

// Insert appends it to the end of its collection.
func (s *Scene) Insert(it Item) ID {
	id, _ := s.InsertAt(it, -1)
	return id
}

// InsertAt inserts it at index within its collection; a negative index
// appends.
func (s *Scene) InsertAt(it Item, index int) (ID, error) {
	return s.insert(it, index, uuid.Nil)
}

// InsertWithUID is InsertAt with a caller-chosen persistent UID, used when
// loading documents.
func (s *Scene) InsertWithUID(it Item, index int, uid uuid.UUID) (ID, error) {
	return s.insert(it, index, uid)
}

func (s *Scene) insert(it Item, index int, uid uuid.UUID) (ID, error) {
	s.mu.Lock()
	k := it.Kind()
	if index > len(s.order[k]) {
		s.mu.Unlock()
		return ID{}, fmt.Errorf("%w: %s[%d] of %d", ErrInvalidIndex, k, index, len(s.order[k]))
	}
	id := s.alloc(it, uid)
	if index < 0 {
		s.order[k] = append(s.order[k], id)
	} else {
		s.order[k] = slices.Insert(s.order[k], index, id)
	}
	s.mu.Unlock()
	s.changed()
	return id, nil
}

// Restore revives a removed item under its original ID at index.
func (s *Scene) Restore(id ID, it Item, index int) error {
	s.mu.Lock()
	if id.IsZero() || int(id.Slot) >= len(s.slots) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStaleID, id)
	}
	sl := &s.slots[id.Slot]
	if sl.live || sl.gen != id.Gen {
		s.mu.Unlock()
		return fmt.Errorf("%w: restore %s", ErrStaleID, id)
	}
	k := it.Kind()
	if index < 0 || index > len(s.order[k]) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s[%d] of %d", ErrInvalidIndex, k, index, len(s.order[k]))
	}
	sl.live, sl.item = true, it
	s.order[k] = slices.Insert(s.order[k], index, id)
	s.mu.Unlock()
	s.changed()
	return nil
}

// Remove takes the item out of its collection and returns it together with
// the index it occupied.
func (s *Scene) Remove(id ID) (Item, int, error) {
	s.mu.Lock()
	sl, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return nil, -1, err
	}
	k := sl.item.Kind()
	idx := slices.Index(s.order[k], id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, -1, fmt.Errorf("%w: %s not in %s collection", ErrStaleID, id, k)
	}
	s.order[k] = slices.Delete(s.order[k], idx, idx+1)
	it := sl.item
	sl.live, sl.item = false, nil
	s.mu.Unlock()
	s.changed()
	return it, idx, nil
}

// Get returns the live payload for id. Callers must not mutate it; use Set.
func (s *Scene) Get(id ID) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sl.item, nil
}

// Set replaces the payload of id. The kind cannot change.
func (s *Scene) Set(id ID, it Item) error {
	s.mu.Lock()
	sl, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if sl.item.Kind() != it.Kind() {
		s.mu.Unlock()
		return fmt.Errorf("set %s: kind %s cannot become %s", id, sl.item.Kind(), it.Kind())
	}
	sl.item = it
	s.mu.Unlock()
	s.changed()
	return nil
}

// UID returns the persistent identifier of id.
func (s *Scene) UID(id ID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, err := s.lookup(id)
	if err != nil {
		return uuid.Nil, err
	}
	return sl.uid, nil
}

// RefOf returns the current positional address of id.
func (s *Scene) RefOf(id ID) (Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, err := s.lookup(id)
	if err != nil {
		return Ref{}, err
	}
	k := sl.item.Kind()
	return Ref{Kind: k, Index: slices.Index(s.order[k], id)}, nil
}

// Resolve maps a positional ref to the ID currently at that position.
func (s *Scene) Resolve(ref Ref) (ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ref.Kind >= kindCount || ref.Index < 0 || ref.Index >= len(s.order[ref.Kind]) {
		return ID{}, fmt.Errorf("%w: %s", ErrInvalidIndex, ref)
	}
	return s.order[ref.Kind][ref.Index], nil
}

// At returns the ID and payload at ref.
func (s *Scene) At(ref Ref) (ID, Item, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return ID{}, nil, err
	}
	it, err := s.Get(id)
	return id, it, err
}

// Len returns the size of collection k.
func (s *Scene) Len(k Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order[k])
}

// Count returns the number of live items.
func (s *Scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ids := range s.order {
		n += len(ids)
	}
	return n
}

// IDs returns a copy of collection k in order.
func (s *Scene) IDs(k Kind) []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order[k])
}

// Each calls fn for every item in paint order until fn returns false.
// fn must not mutate the scene.
func (s *Scene) Each(fn func(id ID, it Item) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ids := range s.order {
		for _, id := range ids {
			if !fn(id, s.slots[id.Slot].item) {
				return
			}
		}
	}
}

// Move repositions id within its collection to index.
func (s *Scene) Move(id ID, index int) error {
	s.mu.Lock()
	sl, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	k := sl.item.Kind()
	ids := s.order[k]
	if index < 0 || index >= len(ids) {
		s.mu.Unlock()
		return fmt.Errorf("%w: move %s to %d of %d", ErrInvalidIndex, id, index, len(ids))
	}
	from := slices.Index(ids, id)
	ids = slices.Delete(ids, from, from+1)
	s.order[k] = slices.Insert(ids, index, id)
	s.mu.Unlock()
	s.changed()
	return nil
}

// Reclaim makes every vacant slot reusable. IDs that pointed at them become
// permanently stale. Call it only when nothing (such as undo history) can
// still revive those items.
func (s *Scene) Reclaim() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.free = s.free[:0]
	for i := range s.slots {
		if !s.slots[i].live {
			s.slots[i].gen++
			s.slots[i].uid = uuid.Nil
			s.free = append(s.free, uint32(i))
		}
	}
	if n := len(s.free); n > 0 {
		logx.For("state").Debug("reclaimed slots", "count", n)
	}
	return len(s.free)
}

// Entry is one item of a Snapshot.
type Entry struct {
	ID   ID
	UID  uuid.UUID
	Item Item
}

// Snapshot is a deep copy of every collection in order.
type Snapshot [kindCount][]Entry

// Len returns the number of entries across all collections.
func (sn *Snapshot) Len() int {
	n := 0
	for _, es := range sn {
		n += len(es)
	}
	return n
}

// Snapshot deep-copies the current contents.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sn Snapshot
	for k, ids := range s.order {
		sn[k] = make([]Entry, len(ids))
		for i, id := range ids {
			sl := s.slots[id.Slot]
			sn[k][i] = Entry{ID: id, UID: sl.uid, Item: sl.item.Clone()}
		}
	}
	return sn
}
