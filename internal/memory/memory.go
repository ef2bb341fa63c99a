// Package memory keeps the conversation log for the current video.
package memory

import (
	"sync"

	"github.com/hyperjump/kiku/internal/models"
)

// Memory is an append-only log of question and answer turns. The full log is
// kept for display; prompts read only the most recent turns. Safe for
// concurrent use.
type Memory struct {
	mu    sync.RWMutex
	turns []models.Turn
}

// New returns an empty memory, optionally seeded with earlier turns.
func New(turns ...models.Turn) *Memory {
	m := &Memory{}
	m.turns = append(m.turns, turns...)
	return m
}

// Append adds turn at the end of the log.
func (m *Memory) Append(turn models.Turn) {
	m.mu.Lock()
	m.turns = append(m.turns, turn)
	m.mu.Unlock()
}

// Recent returns the last n turns, oldest first. It returns fewer when the log
// is shorter and an empty slice for n <= 0.
func (m *Memory) Recent(n int) []models.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 {
		return []models.Turn{}
	}
	if n > len(m.turns) {
		n = len(m.turns)
	}
	out := make([]models.Turn, n)
	copy(out, m.turns[len(m.turns)-n:])
	return out
}

// All returns a copy of the whole log.
func (m *Memory) All() []models.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of turns.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Reset clears the log.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.turns = nil
	m.mu.Unlock()
}
