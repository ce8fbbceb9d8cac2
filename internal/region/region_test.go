package region

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mindhaven/trustengine/internal/behavior"
	"github.com/mindhaven/trustengine/internal/pricing"
	"github.com/mindhaven/trustengine/internal/trust"
)

func newTestService(t *testing.T) (*Service, *trust.Service, *behavior.MemoryStore) {
	t.Helper()
	trustSvc := trust.NewService(trust.NewMemoryStore(), slog.Default())
	events := behavior.NewMemoryStore()
	rules := pricing.NewMemoryRuleStore(pricing.SeedRules())
	svc := NewService(trustSvc, rules, behavior.NewRecorder(events), slog.Default())
	return svc, trustSvc, events
}

func TestDetect_FirstContactCreatesRecord(t *testing.T) {
	svc, trustSvc, events := newTestService(t)
	ctx := context.Background()

	prefs, err := svc.Detect(ctx, "user-1", Signals{DetectedCountry: "BR", IPAddress: "203.0.113.9"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if prefs.CountryCode != "BR" || prefs.Currency != "BRL" || !prefs.PPPEligible {
		t.Errorf("prefs = %+v, want BR/BRL/eligible", prefs)
	}
	if prefs.TrustLevel != string(trust.LevelNew) {
		t.Errorf("trust level = %q, want new", prefs.TrustLevel)
	}
	if prefs.AvailableDiscountPercent != 18 {
		t.Errorf("available discount = %d, want 18 for new", prefs.AvailableDiscountPercent)
	}
	if prefs.ManualSelection {
		t.Error("first contact must not report a manual selection")
	}

	if _, err := trustSvc.Get(ctx, "user-1"); err != nil {
		t.Errorf("trust record not created: %v", err)
	}

	recorded, err := events.EventsByTypeSince(ctx, behavior.EventRegionDetection, time.Time{})
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(recorded) != 1 {
		t.Fatalf("recorded %d detection events, want 1", len(recorded))
	}
	if recorded[0].CountryDetected != "BR" || recorded[0].IPAddress != "203.0.113.9" {
		t.Errorf("unexpected event: %+v", recorded[0])
	}
}

func TestDetect_UnknownCountryStillSucceeds(t *testing.T) {
	svc, _, _ := newTestService(t)

	prefs, err := svc.Detect(context.Background(), "user-1", Signals{DetectedCountry: "ZW"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if prefs.CountryCode != "ZW" {
		t.Errorf("country = %q, want ZW", prefs.CountryCode)
	}
	if prefs.Currency != "" || prefs.PPPEligible {
		t.Errorf("no rule configured, got currency=%q eligible=%v", prefs.Currency, prefs.PPPEligible)
	}
}

func TestSetPreference_ManualSelectionWins(t *testing.T) {
	svc, trustSvc, events := newTestService(t)
	ctx := context.Background()

	prefs, err := svc.SetPreference(ctx, "user-1", "in", Signals{DetectedCountry: "US"})
	if err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if prefs.CountryCode != "IN" || !prefs.ManualSelection {
		t.Errorf("prefs = %+v, want manual IN", prefs)
	}
	if prefs.DetectedCountry != "US" {
		t.Errorf("detected = %q, want US preserved", prefs.DetectedCountry)
	}
	if prefs.Currency != "INR" {
		t.Errorf("currency = %q, want INR", prefs.Currency)
	}

	// The manual choice is a 0.7-weight verification on the record.
	rec, err := trustSvc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.VerificationCount != 1 {
		t.Errorf("verification count = %d, want 1", rec.VerificationCount)
	}
	if rec.Confidence != 0.7 {
		t.Errorf("confidence = %f, want 0.7", rec.Confidence)
	}
	if rec.Level != trust.LevelBuilding {
		t.Errorf("level = %s, want building at 0.7 confidence", rec.Level)
	}

	changes, err := events.EventsByTypeSince(ctx, behavior.EventPreferenceChange, time.Time{})
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(changes) != 1 {
		t.Errorf("recorded %d preference events, want 1", len(changes))
	}

	// A later plain detection still honors the stored preference.
	again, err := svc.Detect(ctx, "user-1", Signals{DetectedCountry: "US"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if again.CountryCode != "IN" || !again.ManualSelection {
		t.Errorf("re-detection = %+v, want manual IN", again)
	}
}

func TestSetPreference_RejectsInvalidCountry(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, code := range []string{"", "X", "USA", "12"} {
		if _, err := svc.SetPreference(context.Background(), "user-1", code, Signals{}); err == nil {
			t.Errorf("SetPreference(%q) should fail", code)
		}
	}
}
