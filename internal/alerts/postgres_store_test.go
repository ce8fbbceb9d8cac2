package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mindhaven/trustengine/internal/testutil"
)

func pgAlert(id, userID, alertType string, severity Severity) *Alert {
	return &Alert{
		ID:          id,
		UserID:      userID,
		AlertType:   alertType,
		Severity:    severity,
		Description: "integration test alert",
		Evidence:    json.RawMessage(`{"country":"NG","signup_count":11}`),
		Status:      StatusPending,
		ScanID:      "scan_test",
	}
}

func TestPostgresStore_InsertBatchAndList(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	batch := []*Alert{
		pgAlert("alert_pg_1", "user-a", TypeLocationMismatch, SeverityMedium),
		pgAlert("alert_pg_2", "user-b", TypeRapidLocation, SeverityHigh),
		pgAlert("alert_pg_3", SystemUserID, TypeSignupVolume, SeverityMedium),
	}
	if err := store.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending alerts, got %d", len(pending))
	}

	byUser, err := store.ListByUser(ctx, "user-b", 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(byUser) != 1 || byUser[0].ID != "alert_pg_2" {
		t.Errorf("expected only user-b's alert, got %+v", byUser)
	}

	got, err := store.Get(ctx, "alert_pg_3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsSystem() {
		t.Errorf("expected system alert, got user %q", got.UserID)
	}
	var evidence map[string]any
	if err := json.Unmarshal(got.Evidence, &evidence); err != nil {
		t.Fatalf("evidence not valid JSON: %v", err)
	}
	if evidence["signup_count"] != float64(11) {
		t.Errorf("evidence signup_count = %v, want 11", evidence["signup_count"])
	}
}

func TestPostgresStore_InsertBatchEmpty(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	if err := store.InsertBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestPostgresStore_DismissLifecycle(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	if err := store.InsertBatch(ctx, []*Alert{
		pgAlert("alert_pg_d", "user-c", TypeLowTrust, SeverityHigh),
	}); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	if err := store.Dismiss(ctx, "alert_pg_d"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	got, err := store.Get(ctx, "alert_pg_d")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusResolved {
		t.Errorf("status = %s, want resolved", got.Status)
	}
	if got.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}

	// Second dismissal is rejected; resolution is final.
	if err := store.Dismiss(ctx, "alert_pg_d"); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("expected ErrAlreadyResolved, got %v", err)
	}

	// Unknown alert
	if err := store.Dismiss(ctx, "alert_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Dismissed alert no longer appears in the pending list.
	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	for _, a := range pending {
		if a.ID == "alert_pg_d" {
			t.Error("dismissed alert still pending")
		}
	}
}
