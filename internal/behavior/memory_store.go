package behavior

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory event store for demo/development mode.
type MemoryStore struct {
	events []*Event
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *event
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.events = append(m.events, &cp)
	return nil
}

func (m *MemoryStore) EventsSince(ctx context.Context, since time.Time) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Event
	for _, e := range m.events {
		if !e.CreatedAt.Before(since) {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MemoryStore) EventsByTypeSince(ctx context.Context, eventType string, since time.Time) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Event
	for _, e := range m.events {
		if e.EventType == eventType && !e.CreatedAt.Before(since) {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}
