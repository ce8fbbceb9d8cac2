package trust

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory trust store for demo/development mode.
type MemoryStore struct {
	records map[string]*Record // by user ID
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory trust store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneRecord(record)
	return cp, nil
}

func (m *MemoryStore) Put(ctx context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := cloneRecord(record)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.records[record.UserID] = cp
	return nil
}

func (m *MemoryStore) SetLevel(ctx context.Context, userID string, level Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[userID]
	if !ok {
		return ErrNotFound
	}
	record.Level = level
	record.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ListLowConfidence(ctx context.Context, maxConfidence float64, minVerifications int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Record
	for _, record := range m.records {
		if record.Confidence < maxConfidence && record.VerificationCount >= minVerifications {
			result = append(result, cloneRecord(record))
		}
	}
	return result, nil
}

func cloneRecord(r *Record) *Record {
	cp := *r
	cp.Verifications = make([]Verification, len(r.Verifications))
	copy(cp.Verifications, r.Verifications)
	return &cp
}
