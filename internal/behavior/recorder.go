package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/mindhaven/trustengine/internal/idgen"
	"github.com/mindhaven/trustengine/internal/metrics"
)

// Recorder appends behavioral events derived from request context.
type Recorder struct {
	store Store
}

// NewRecorder creates a recorder backed by the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Signals carries the request-derived inputs for one event.
// CountryDetected comes from the IP-geolocation signal and is treated
// as an opaque external input.
type Signals struct {
	CountryClaimed     string
	CountryDetected    string
	IPAddress          string
	TimezoneOffset     int
	LanguagePreference string
	UserAgent          string
	RiskScore          float64 // 0 means "use the default"
}

// Record appends one event. The write is order-only: no overwrite, no merge.
func (r *Recorder) Record(ctx context.Context, userID, eventType string, sig Signals) (*Event, error) {
	risk := sig.RiskScore
	if risk == 0 {
		risk = DefaultRiskScore
	}

	event := &Event{
		ID:                 idgen.WithPrefix("evt_"),
		UserID:             userID,
		EventType:          eventType,
		CountryClaimed:     sig.CountryClaimed,
		CountryDetected:    sig.CountryDetected,
		IPAddress:          sig.IPAddress,
		TimezoneOffset:     sig.TimezoneOffset,
		LanguagePreference: sig.LanguagePreference,
		UserAgent:          sig.UserAgent,
		RiskScore:          risk,
		CreatedAt:          time.Now(),
	}

	if err := r.store.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append behavioral event: %w", err)
	}

	metrics.BehavioralEventsTotal.WithLabelValues(eventType).Inc()
	return event, nil
}
