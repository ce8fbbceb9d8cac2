// Package region resolves a user's pricing region and handles explicit
// country preferences.
//
// Detection prefers the user's own manual selection over the
// edge-detected country; both are recorded as behavioral events so the
// fraud detector can compare them later.
package region

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mindhaven/trustengine/internal/behavior"
	"github.com/mindhaven/trustengine/internal/pricing"
	"github.com/mindhaven/trustengine/internal/trust"
	"github.com/mindhaven/trustengine/internal/validation"
)

// ErrInvalidCountry is returned for preference values that are not
// ISO 3166-1 alpha-2 codes.
var ErrInvalidCountry = errors.New("region: invalid country code")

// Preferences is the detection result returned to callers.
type Preferences struct {
	UserID                   string `json:"userId"`
	CountryCode              string `json:"countryCode"` // effective region, "" if undetermined
	DetectedCountry          string `json:"detectedCountry,omitempty"`
	ManualSelection          bool   `json:"manualSelection"`
	Currency                 string `json:"currency,omitempty"`
	PPPEligible              bool   `json:"pppEligible"`
	TrustLevel               string `json:"trustLevel"`
	AvailableDiscountPercent int    `json:"availableDiscountPercent"`
}

// Signals carries the request-derived inputs for one detection.
type Signals struct {
	DetectedCountry    string
	IPAddress          string
	TimezoneOffset     int
	LanguagePreference string
	UserAgent          string
}

// Service implements region detection and preference changes.
type Service struct {
	trust    *trust.Service
	rules    pricing.RuleStore
	recorder *behavior.Recorder
	logger   *slog.Logger
}

// NewService creates a region service.
func NewService(trustSvc *trust.Service, rules pricing.RuleStore, recorder *behavior.Recorder, logger *slog.Logger) *Service {
	return &Service{trust: trustSvc, rules: rules, recorder: recorder, logger: logger}
}

// Detect resolves the user's region, creating the trust record on first
// contact. A stored manual selection beats the edge signal. The
// behavioral event write is best effort; detection still succeeds when
// the event store is down.
func (s *Service) Detect(ctx context.Context, userID string, sig Signals) (*Preferences, error) {
	record, err := s.trust.EnsureRecord(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure trust record: %w", err)
	}

	manual := manualCountry(record)
	effective := manual
	if effective == "" {
		effective = sig.DetectedCountry
	}

	prefs := &Preferences{
		UserID:                   userID,
		CountryCode:              effective,
		DetectedCountry:          sig.DetectedCountry,
		ManualSelection:          manual != "",
		TrustLevel:               string(record.Level),
		AvailableDiscountPercent: s.trust.AvailableDiscount(record.Level),
	}

	if effective != "" {
		rule, err := s.rules.GetRule(ctx, effective)
		switch {
		case err == nil:
			prefs.Currency = rule.Currency
			prefs.PPPEligible = rule.PPPEligible
		case !errors.Is(err, pricing.ErrRuleNotFound):
			return nil, fmt.Errorf("load country rule: %w", err)
		}
	}

	if _, err := s.recorder.Record(ctx, userID, behavior.EventRegionDetection, behavior.Signals{
		CountryClaimed:     effective,
		CountryDetected:    sig.DetectedCountry,
		IPAddress:          sig.IPAddress,
		TimezoneOffset:     sig.TimezoneOffset,
		LanguagePreference: sig.LanguagePreference,
		UserAgent:          sig.UserAgent,
	}); err != nil {
		s.logger.Warn("region detection event not recorded", "user_id", userID, "error", err)
	}

	return prefs, nil
}

// SetPreference stores an explicit country choice as a verification,
// records the change, and re-runs detection so the caller sees the
// updated region in one round trip.
func (s *Service) SetPreference(ctx context.Context, userID, country string, sig Signals) (*Preferences, error) {
	country = validation.NormalizeCountryCode(country)
	if !validation.IsValidCountryCode(country) {
		return nil, ErrInvalidCountry
	}

	if _, err := s.trust.RecordVerification(ctx, userID, trust.Verification{
		Method:           "manual_selection",
		Field:            "country",
		Value:            country,
		ConfidenceWeight: trust.ManualCountryWeight,
		Source:           "user",
	}); err != nil {
		return nil, fmt.Errorf("record preference verification: %w", err)
	}

	if _, err := s.recorder.Record(ctx, userID, behavior.EventPreferenceChange, behavior.Signals{
		CountryClaimed:     country,
		CountryDetected:    sig.DetectedCountry,
		IPAddress:          sig.IPAddress,
		TimezoneOffset:     sig.TimezoneOffset,
		LanguagePreference: sig.LanguagePreference,
		UserAgent:          sig.UserAgent,
	}); err != nil {
		s.logger.Warn("preference change event not recorded", "user_id", userID, "error", err)
	}

	return s.Detect(ctx, userID, sig)
}

// manualCountry returns the most recent manually selected country, or "".
func manualCountry(record *trust.Record) string {
	for i := len(record.Verifications) - 1; i >= 0; i-- {
		v := record.Verifications[i]
		if v.Method == "manual_selection" && v.Field == "country" {
			return v.Value
		}
	}
	return ""
}
