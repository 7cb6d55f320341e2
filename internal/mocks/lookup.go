package mocks

import (
	"context"
	"sync"
)

// MockLookup answers Exists from a fixed set of ids.
type MockLookup struct {
	mu  sync.Mutex
	ids map[uint]bool

	Err error
}

func NewMockLookup(ids ...uint) *MockLookup {
	m := &MockLookup{ids: make(map[uint]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func (m *MockLookup) Exists(ctx context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	return m.ids[id], nil
}
