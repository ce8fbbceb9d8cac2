package trust

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mindhaven/trustengine/internal/testutil"
)

func TestPostgresStore_PutGetRoundtrip(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	rec := NewRecord("user-pg-1")
	rec.Level = LevelBuilding
	rec.Confidence = 0.62
	rec.VerificationCount = 2
	rec.IPConsistency = 0.8
	rec.Verifications = []Verification{
		{Method: "manual_selection", Field: "country", Value: "BR",
			ConfidenceWeight: ManualCountryWeight, Source: "user", VerifiedAt: time.Now().UTC()},
	}

	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "user-pg-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Level != LevelBuilding {
		t.Errorf("level = %s, want building", got.Level)
	}
	if got.Confidence != 0.62 {
		t.Errorf("confidence = %v, want 0.62", got.Confidence)
	}
	if got.VerificationCount != 2 {
		t.Errorf("verification count = %d, want 2", got.VerificationCount)
	}
	if len(got.Verifications) != 1 || got.Verifications[0].Value != "BR" {
		t.Errorf("verifications not preserved: %+v", got.Verifications)
	}
}

func TestPostgresStore_PutIsUpsert(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	rec := NewRecord("user-pg-2")
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("first Put: %v", err)
	}

	rec.Confidence = 0.9
	rec.Level = LevelTrusted
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := store.Get(ctx, "user-pg-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Level != LevelTrusted || got.Confidence != 0.9 {
		t.Errorf("upsert not applied: level=%s confidence=%v", got.Level, got.Confidence)
	}
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_SetLevel(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	if err := store.SetLevel(ctx, "nobody", LevelSuspicious); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}

	rec := NewRecord("user-pg-3")
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.SetLevel(ctx, "user-pg-3", LevelSuspicious); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}

	got, err := store.Get(ctx, "user-pg-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Level != LevelSuspicious {
		t.Errorf("level = %s, want suspicious", got.Level)
	}
}

func TestPostgresStore_ListLowConfidence(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	seed := []struct {
		userID     string
		confidence float64
		count      int
	}{
		{"low-many", 0.2, 6},  // matches
		{"low-few", 0.2, 2},   // too few verifications
		{"high-many", 0.9, 8}, // confident
	}
	for _, s := range seed {
		rec := NewRecord(s.userID)
		rec.Confidence = s.confidence
		rec.VerificationCount = s.count
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put %s: %v", s.userID, err)
		}
	}

	records, err := store.ListLowConfidence(ctx, 0.3, 5)
	if err != nil {
		t.Fatalf("ListLowConfidence: %v", err)
	}
	if len(records) != 1 || records[0].UserID != "low-many" {
		t.Errorf("expected only low-many, got %+v", records)
	}
}
