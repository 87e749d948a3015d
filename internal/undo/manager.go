// Package undo records scene mutations as commands and replays them
// backwards and forwards. Every structural change to a board goes through a
// Manager so history stays consistent.
package undo

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"VectorBoard/internal/logx"
	"VectorBoard/internal/state"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is one undoable mutation. Commands hold IDs and deep-copied
// payloads, never live references into the scene.
type Command interface {
	Execute(s *state.Scene) error
	Undo(s *state.Scene) error
	Name() string
}

// DefaultLimit is the history length used when NewManager is given zero.
const DefaultLimit = 200

// Manager owns the undo history of one scene. recs[:idx] can be undone and
// recs[idx:] redone.
type Manager struct {
	mu    sync.Mutex
	scene *state.Scene
	recs  []Command
	idx   int
	limit int
	log   *slog.Logger
}

// NewManager returns a manager for scene keeping at most limit commands. A
// negative limit keeps everything.
func NewManager(scene *state.Scene, limit int) *Manager {
	if limit == 0 {
		limit = DefaultLimit
	}
	return &Manager{scene: scene, limit: limit, log: logx.For("undo")}
}

// Scene returns the scene commands are applied to.
func (m *Manager) Scene() *state.Scene { return m.scene }

// Do executes c and records it, discarding anything that could be redone.
// A command that fails to execute is rolled back and not recorded.
func (m *Manager) Do(c Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := c.Execute(m.scene); err != nil {
		m.log.Warn("command failed", "cmd", c.Name(), "err", err)
		if uerr := c.Undo(m.scene); uerr != nil {
			m.log.Debug("rollback incomplete", "cmd", c.Name(), "err", uerr)
		}
		return fmt.Errorf("%s: %w", c.Name(), err)
	}
	m.push(c)
	return nil
}

// Commit records c, whose effect the caller has already applied (a drag
// that edited the scene live, for instance).
func (m *Manager) Commit(c Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.push(c)
}

func (m *Manager) push(c Command) {
	m.recs = append(m.recs[:m.idx], c)
	m.idx++
	if m.limit > 0 && len(m.recs) > m.limit {
		drop := len(m.recs) - m.limit
		m.recs = append(m.recs[:0], m.recs[drop:]...)
		m.idx -= drop
	}
	m.log.Debug("recorded", "cmd", c.Name(), "depth", m.idx)
}

// Undo reverts the latest command and returns its name. A command that can
// no longer be fully reverted (stale IDs, shifted indices) is logged and
// still stepped over, so the manager stays usable.
func (m *Manager) Undo() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idx == 0 {
		return "", ErrNothingToUndo
	}
	m.idx--
	c := m.recs[m.idx]
	if err := c.Undo(m.scene); err != nil {
		m.log.Error("undo skipped", "cmd", c.Name(), "err", err)
		return c.Name(), fmt.Errorf("undo %s: %w", c.Name(), err)
	}
	return c.Name(), nil
}

// Redo re-applies the latest undone command and returns its name.
func (m *Manager) Redo() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idx == len(m.recs) {
		return "", ErrNothingToRedo
	}
	c := m.recs[m.idx]
	m.idx++
	if err := c.Execute(m.scene); err != nil {
		m.log.Error("redo skipped", "cmd", c.Name(), "err", err)
		return c.Name(), fmt.Errorf("redo %s: %w", c.Name(), err)
	}
	return c.Name(), nil
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idx > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idx < len(m.recs)
}

// Names returns the names of the undoable commands, oldest first.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, m.idx)
	for i, c := range m.recs[:m.idx] {
		out[i] = c.Name()
	}
	return out
}

// Clear drops all history. Items removed by recorded commands can no longer
// come back, so their slots are handed back to the scene.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs, m.idx = nil, 0
	m.scene.Reclaim()
}
