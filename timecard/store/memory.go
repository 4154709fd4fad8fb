// Package store provides an in-memory Repository implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// MEMORY REPOSITORY
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	cards map[timecard.ID]*timecard.Timecard
}

func NewMemory() *Memory {
	return &Memory{cards: make(map[timecard.ID]*timecard.Timecard)}
}

var _ timecard.Repository = (*Memory)(nil)

// All returns copies of every timecard, ordered by Opened ascending.
func (m *Memory) All(_ context.Context) ([]*timecard.Timecard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*timecard.Timecard, 0, len(m.cards))
	for _, tc := range m.cards {
		out = append(out, tc.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Opened.Before(out[j].Opened)
	})
	return out, nil
}

// Find returns a deep copy so callers never observe a partially-mutated
// aggregate.
func (m *Memory) Find(_ context.Context, id timecard.ID) (*timecard.Timecard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tc, ok := m.cards[id]
	if !ok {
		return nil, timecard.ErrNotFound
	}
	return tc.Clone(), nil
}

func (m *Memory) Add(_ context.Context, tc *timecard.Timecard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tc.Revision = 1
	m.cards[tc.ID] = tc.Clone()
	return nil
}

// Update persists a mutated aggregate under optimistic concurrency: the
// caller's revision must match the stored one.
func (m *Memory) Update(_ context.Context, tc *timecard.Timecard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.cards[tc.ID]
	if !ok {
		return timecard.ErrNotFound
	}
	if stored.Revision != tc.Revision {
		return timecard.ErrConflict
	}
	tc.Revision++
	m.cards[tc.ID] = tc.Clone()
	return nil
}

// Replace overwrites unconditionally, keyed by id.
func (m *Memory) Replace(_ context.Context, id timecard.ID, tc *timecard.Timecard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.cards[id]
	if !ok {
		return timecard.ErrNotFound
	}
	tc.Revision = stored.Revision + 1
	m.cards[id] = tc.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id timecard.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[id]; !ok {
		return timecard.ErrNotFound
	}
	delete(m.cards, id)
	return nil
}
