package behavior

import (
	"context"
	"testing"
	"time"
)

func TestRecord_DefaultsRiskScore(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store)

	event, err := rec.Record(context.Background(), "user-1", EventSignup, Signals{
		CountryClaimed:  "US",
		CountryDetected: "US",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if event.RiskScore != DefaultRiskScore {
		t.Errorf("risk score = %f, want %f", event.RiskScore, DefaultRiskScore)
	}
	if event.ID == "" {
		t.Error("event should get a generated ID")
	}
}

func TestRecord_CallerRiskScoreWins(t *testing.T) {
	rec := NewRecorder(NewMemoryStore())

	event, err := rec.Record(context.Background(), "user-1", EventRegionDetection, Signals{
		RiskScore: 0.8,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if event.RiskScore != 0.8 {
		t.Errorf("risk score = %f, want 0.8", event.RiskScore)
	}
}

func TestRecord_AppendOnly(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := rec.Record(ctx, "user-1", EventSignup, Signals{CountryClaimed: "NG"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	events, err := store.EventsSince(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 independent events, got %d", len(events))
	}
}

func TestEventsByTypeSince_FiltersTypeAndWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	old := &Event{UserID: "u1", EventType: EventSignup, CreatedAt: time.Now().Add(-48 * time.Hour)}
	if err := store.Append(ctx, old); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	recent := &Event{UserID: "u2", EventType: EventSignup, CreatedAt: time.Now()}
	if err := store.Append(ctx, recent); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	other := &Event{UserID: "u3", EventType: EventPricingCalculation, CreatedAt: time.Now()}
	if err := store.Append(ctx, other); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := store.EventsByTypeSince(ctx, EventSignup, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("EventsByTypeSince failed: %v", err)
	}
	if len(events) != 1 || events[0].UserID != "u2" {
		t.Errorf("expected only the recent signup, got %d events", len(events))
	}
}
