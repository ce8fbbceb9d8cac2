package alerts

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAlreadyResolved is returned when dismissing a resolved alert.
var ErrAlreadyResolved = errors.New("alerts: already resolved")

// MemoryStore is an in-memory alert store for demo/development mode.
type MemoryStore struct {
	alerts []*Alert
	byID   map[string]*Alert
	mu     sync.RWMutex
}

// NewMemoryStore creates an in-memory alert store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Alert)}
}

func (m *MemoryStore) InsertBatch(ctx context.Context, batch []*Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range batch {
		cp := *a
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		if cp.Status == "" {
			cp.Status = StatusPending
		}
		m.alerts = append(m.alerts, &cp)
		m.byID[cp.ID] = &cp
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) ListPending(ctx context.Context, limit int) ([]*Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	var result []*Alert
	for i := len(m.alerts) - 1; i >= 0 && len(result) < limit; i-- {
		if m.alerts[i].Status == StatusPending {
			cp := *m.alerts[i]
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	var result []*Alert
	for i := len(m.alerts) - 1; i >= 0 && len(result) < limit; i-- {
		if m.alerts[i].UserID == userID {
			cp := *m.alerts[i]
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MemoryStore) Dismiss(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status == StatusResolved {
		return ErrAlreadyResolved
	}
	now := time.Now()
	a.Status = StatusResolved
	a.ResolvedAt = &now
	return nil
}

// All returns every stored alert (for testing).
func (m *MemoryStore) All() []*Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Alert, len(m.alerts))
	copy(result, m.alerts)
	return result
}
