package trust

import "context"

// Store persists trust records.
type Store interface {
	// Get returns the record for a user, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Record, error)

	// Put upserts the full record. All fields persist atomically.
	Put(ctx context.Context, record *Record) error

	// SetLevel overwrites only the trust level for a user.
	SetLevel(ctx context.Context, userID string, level Level) error

	// ListLowConfidence returns records with confidence below maxConfidence
	// and at least minVerifications verifications.
	ListLowConfidence(ctx context.Context, maxConfidence float64, minVerifications int) ([]*Record, error)
}
