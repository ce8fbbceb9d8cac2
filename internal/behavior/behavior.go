// Package behavior records immutable behavioral events for fraud analysis.
//
// One event is appended per significant user action (region detection,
// signup, pricing calculation, preference change) with the raw signals
// observed at the time: claimed vs detected country, timezone offset,
// language, and user agent. Events are append-only; the fraud detector
// reads them back over bounded time windows.
package behavior

import (
	"context"
	"time"
)

// Event types recorded by the engine.
const (
	EventRegionDetection    = "region_detection"
	EventSignup             = "signup"
	EventPricingCalculation = "pricing_calculation"
	EventPreferenceChange   = "preference_change"
)

// DefaultRiskScore is the starting risk for an event when the caller
// supplies none.
const DefaultRiskScore = 0.1

// Event is one immutable behavioral record.
type Event struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	EventType          string    `json:"eventType"`
	CountryClaimed     string    `json:"countryClaimed"`
	CountryDetected    string    `json:"countryDetected"`
	IPAddress          string    `json:"ipAddress,omitempty"`
	TimezoneOffset     int       `json:"timezoneOffset"` // minutes from UTC
	LanguagePreference string    `json:"languagePreference,omitempty"`
	UserAgent          string    `json:"userAgent,omitempty"`
	RiskScore          float64   `json:"riskScore"` // [0,1]
	CreatedAt          time.Time `json:"createdAt"`
}

// Store persists behavioral events. Events are never updated or deleted.
type Store interface {
	// Append writes one event. Each call is independent; no read-modify-write.
	Append(ctx context.Context, event *Event) error

	// EventsSince returns all events created at or after the cutoff.
	EventsSince(ctx context.Context, since time.Time) ([]*Event, error)

	// EventsByTypeSince returns events of one type created at or after the cutoff.
	EventsByTypeSince(ctx context.Context, eventType string, since time.Time) ([]*Event, error)
}
