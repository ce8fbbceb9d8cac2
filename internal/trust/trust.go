// Package trust implements per-user trust scoring for regional pricing.
//
// Every user carries a trust record: a coarse level (new through blocked),
// a continuous confidence score in [0,1], and consistency weights derived
// from independent identity signals (IP, behavior, payment). Levels gate
// how much of a regional discount a user actually receives; confidence is
// rebuilt from accumulated verification evidence on every update.
package trust

import (
	"errors"
	"math"
	"time"
)

// Level is a coarse reputation bucket driving pricing multipliers.
type Level string

const (
	LevelNew        Level = "new"        // no history yet
	LevelBuilding   Level = "building"   // some consistent signals
	LevelTrusted    Level = "trusted"    // proven consistency
	LevelSuspicious Level = "suspicious" // flagged by fraud detection
	LevelBlocked    Level = "blocked"    // no discounts at all
)

// ErrNotFound is returned when no trust record exists for a user.
var ErrNotFound = errors.New("trust: record not found")

// Verification is one piece of identity evidence attached to a record.
type Verification struct {
	Method           string    `json:"method"` // manual_selection, geo_detection, payment_method
	Field            string    `json:"field"`  // e.g. "country"
	Value            string    `json:"value"`
	ConfidenceWeight float64   `json:"confidenceWeight"` // contribution in [0,1]
	Source           string    `json:"source"`           // user, edge, billing
	VerifiedAt       time.Time `json:"verifiedAt"`
}

// Record is the durable reputation ledger entry for one user.
// Records are created on first region detection and never deleted.
type Record struct {
	UserID                string         `json:"userId"`
	Level                 Level          `json:"level"`
	Confidence            float64        `json:"confidence"` // [0,1]
	VerificationCount     int            `json:"verificationCount"`
	IPConsistency         float64        `json:"ipConsistency"`         // [0,1]
	BehavioralConsistency float64        `json:"behavioralConsistency"` // [0,1]
	PaymentConsistency    float64        `json:"paymentConsistency"`    // [0,1]
	Verifications         []Verification `json:"verifications,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

// MultiplierTable maps a trust level to its price multiplier. A multiplier
// m means the user pays fraction m of an otherwise-eligible discount; lower
// m = bigger discount. Injected so thresholds are tunable and testable.
type MultiplierTable map[Level]float64

// DefaultMultipliers is the canonical level → multiplier mapping.
var DefaultMultipliers = MultiplierTable{
	LevelNew:        0.70,
	LevelBuilding:   0.50,
	LevelTrusted:    0.40,
	LevelSuspicious: 0.80,
	LevelBlocked:    1.00,
}

// For returns the multiplier for a level. Unknown or missing levels
// fall back to the "new" multiplier.
func (t MultiplierTable) For(level Level) float64 {
	if m, ok := t[level]; ok {
		return m
	}
	return t[LevelNew]
}

// AvailableDiscountPercent is the maximum discount a multiplier is eligible
// for, as shown to the user independent of country. Always in [0, 60].
func AvailableDiscountPercent(multiplier float64) int {
	return int(math.Round((1 - multiplier) * 60))
}

// DeriveLevel maps a confidence score to an organic trust level.
// Suspicious and blocked are never derived; they are only ever set by
// the fraud detector or an operator and stick until cleared.
func DeriveLevel(current Level, confidence float64) Level {
	if current == LevelSuspicious || current == LevelBlocked {
		return current
	}
	switch {
	case confidence >= 0.8:
		return LevelTrusted
	case confidence >= 0.5:
		return LevelBuilding
	default:
		return LevelNew
	}
}

// NewRecord returns the default record created on first region detection.
func NewRecord(userID string) *Record {
	now := time.Now()
	return &Record{
		UserID:    userID,
		Level:     LevelNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
