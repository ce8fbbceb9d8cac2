// Package fraud runs the batch fraud scan over behavioral events and
// trust records.
//
// A scan executes four independent checks and collects every triggered
// condition into alert rows, inserted as one batch at the end of the
// run. High-severity findings against a real user downgrade that user's
// trust level immediately, before the batch insert; a failed insert is
// logged but the downgrades stand, so the pipeline is at-least-once.
package fraud

import (
	"time"

	"github.com/mindhaven/trustengine/internal/config"
)

// Thresholds tunes the four fraud checks. Values come from config, not
// constants, so operators can tighten them without a rebuild.
type Thresholds struct {
	MismatchWindow time.Duration // location-mismatch lookback
	RapidWindow    time.Duration // rapid-location-change lookback
	SignupWindow   time.Duration // signup-volume lookback

	RapidCountryThreshold int     // distinct claimed countries within RapidWindow
	SignupVolumeThreshold int     // signups per country above which we alert
	LowTrustConfidence    float64 // confidence strictly below this is suspect
	LowTrustVerifications int     // with at least this many verifications
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MismatchWindow:        24 * time.Hour,
		RapidWindow:           1 * time.Hour,
		SignupWindow:          24 * time.Hour,
		RapidCountryThreshold: 3,
		SignupVolumeThreshold: 10,
		LowTrustConfidence:    0.3,
		LowTrustVerifications: 5,
	}
}

// ThresholdsFromConfig builds thresholds from application config.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		MismatchWindow:        cfg.MismatchWindow,
		RapidWindow:           cfg.RapidWindow,
		SignupWindow:          cfg.SignupWindow,
		RapidCountryThreshold: cfg.RapidCountryThreshold,
		SignupVolumeThreshold: cfg.SignupVolumeThreshold,
		LowTrustConfidence:    cfg.LowTrustConfidence,
		LowTrustVerifications: cfg.LowTrustVerifications,
	}
}

// ScanSummary reports what one scan run found. It is returned to the
// caller and logged; alerts themselves are persisted separately.
type ScanSummary struct {
	ScanID               string    `json:"scanId"`
	StartedAt            time.Time `json:"startedAt"`
	DurationMS           int64     `json:"durationMs"`
	AlertsGenerated      int       `json:"alertsGenerated"`
	LocationMismatches   int       `json:"locationMismatches"`
	RapidLocationChanges int       `json:"rapidLocationChanges"`
	SignupVolumeAlerts   int       `json:"signupVolumeAlerts"`
	LowTrustAlerts       int       `json:"lowTrustAlerts"`
	InsertFailed         bool      `json:"insertFailed"`
}
