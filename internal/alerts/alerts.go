// Package alerts holds fraud alert records and their lifecycle.
//
// Alerts are created only by the fraud detector and move through exactly
// one transition: pending → resolved, via explicit dismissal. They are
// never merged, overwritten, or deduplicated; re-detecting the same
// condition on a later scan produces a new alert row.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// SystemUserID marks platform-wide alerts not tied to a single user.
const SystemUserID = "system"

// Severity grades an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Status is the alert lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Alert types emitted by the fraud detector.
const (
	TypeLocationMismatch = "location_mismatch"
	TypeRapidLocation    = "rapid_location_change"
	TypeSignupVolume     = "suspicious_signup_volume"
	TypeLowTrust         = "persistently_low_trust"
)

// ErrNotFound is returned when an alert does not exist.
var ErrNotFound = errors.New("alerts: not found")

// Alert is one triggered fraud condition with its evidence payload.
type Alert struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"` // SystemUserID for platform-wide alerts
	AlertType   string          `json:"alertType"`
	Severity    Severity        `json:"severity"`
	Description string          `json:"description"`
	Evidence    json.RawMessage `json:"evidence,omitempty"`
	Status      Status          `json:"status"`
	ScanID      string          `json:"scanId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
}

// IsSystem reports whether this is a platform-wide alert.
func (a *Alert) IsSystem() bool {
	return a.UserID == SystemUserID
}

// Store persists alerts.
type Store interface {
	// InsertBatch writes all alerts from one scan run in a single batch.
	InsertBatch(ctx context.Context, batch []*Alert) error

	// Get returns one alert by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Alert, error)

	// ListPending returns pending alerts, newest first, up to limit.
	ListPending(ctx context.Context, limit int) ([]*Alert, error)

	// ListByUser returns a user's alerts, newest first, up to limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Alert, error)

	// Dismiss marks a pending alert resolved. Resolving twice is an error;
	// there is no reopening.
	Dismiss(ctx context.Context, id string) error
}
