package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// siteID identifies this board process in mirror snapshots.
var siteID = uuid.NewString()

// SiteID returns the identifier of this board process.
func SiteID() string { return siteID }

// Clock is a monotonically increasing revision counter. The scene ticks it
// on every structural or payload change so observers can drop stale
// snapshots.
type Clock struct {
	counter atomic.Uint64
}

// Tick advances the clock and returns the new revision.
func (c *Clock) Tick() uint64 { return c.counter.Add(1) }

// Now returns the current revision without advancing it.
func (c *Clock) Now() uint64 { return c.counter.Load() }

// Update moves the clock forward to rev if rev is ahead.
func (c *Clock) Update(rev uint64) {
	for {
		cur := c.counter.Load()
		if rev <= cur || c.counter.CompareAndSwap(cur, rev) {
			return
		}
	}
}
