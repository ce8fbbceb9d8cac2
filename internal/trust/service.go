package trust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mindhaven/trustengine/internal/metrics"
	"github.com/mindhaven/trustengine/internal/syncutil"
)

// ManualCountryWeight is the confidence contribution of a user explicitly
// selecting their country. Passive signals carry less weight.
const ManualCountryWeight = 0.7

// Service provides trust record business logic.
type Service struct {
	store       Store
	multipliers MultiplierTable
	locks       syncutil.ShardedMutex
	logger      *slog.Logger
}

// NewService creates a trust service with the default multiplier table.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		multipliers: DefaultMultipliers,
		logger:      logger,
	}
}

// WithMultipliers overrides the level → multiplier table.
func (s *Service) WithMultipliers(t MultiplierTable) *Service {
	s.multipliers = t
	return s
}

// Get returns the trust record for a user, or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID string) (*Record, error) {
	return s.store.Get(ctx, userID)
}

// EnsureRecord returns the user's record, creating the default one on
// first region detection.
func (s *Service) EnsureRecord(ctx context.Context, userID string) (*Record, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	record, err := s.store.Get(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get trust record: %w", err)
	}

	record = NewRecord(userID)
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("create trust record: %w", err)
	}
	return record, nil
}

// RecordVerification appends one piece of evidence to the user's record and
// recomputes confidence, consistency weights, and the organic trust level.
// The verification count increments by exactly one per call. Concurrent
// calls for the same user are serialized; persistence failures propagate
// to the caller rather than defaulting.
func (s *Service) RecordVerification(ctx context.Context, userID string, v Verification) (*Record, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	record, err := s.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("get trust record: %w", err)
		}
		record = NewRecord(userID)
	}

	if v.VerifiedAt.IsZero() {
		v.VerifiedAt = time.Now()
	}
	v.ConfidenceWeight = clamp01(v.ConfidenceWeight)

	record.Verifications = append(record.Verifications, v)
	record.VerificationCount++
	record.Confidence = accumulatedConfidence(record.Verifications)
	record.IPConsistency, record.BehavioralConsistency, record.PaymentConsistency =
		consistencyWeights(record.Verifications)
	record.Level = DeriveLevel(record.Level, record.Confidence)
	record.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("persist trust record: %w", err)
	}

	metrics.VerificationsTotal.Inc()
	s.logger.Debug("verification recorded",
		"user_id", userID,
		"method", v.Method,
		"confidence", record.Confidence,
		"level", record.Level,
	)
	return record, nil
}

// ForceSuspicious unconditionally downgrades a user's trust level,
// independent of the numeric confidence score. Users known only through
// behavioral events get a record created on the spot so the downgrade
// sticks. Used by fraud detection.
func (s *Service) ForceSuspicious(ctx context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	err := s.store.SetLevel(ctx, userID, LevelSuspicious)
	if errors.Is(err, ErrNotFound) {
		record := NewRecord(userID)
		record.Level = LevelSuspicious
		err = s.store.Put(ctx, record)
	}
	if err != nil {
		return fmt.Errorf("force suspicious: %w", err)
	}
	metrics.TrustDowngradesTotal.Inc()
	s.logger.Warn("trust level forced to suspicious", "user_id", userID)
	return nil
}

// ListLowConfidence returns records whose confidence stayed below
// maxConfidence despite at least minVerifications verification attempts.
func (s *Service) ListLowConfidence(ctx context.Context, maxConfidence float64, minVerifications int) ([]*Record, error) {
	return s.store.ListLowConfidence(ctx, maxConfidence, minVerifications)
}

// MultiplierFor returns the price multiplier for a level.
func (s *Service) MultiplierFor(level Level) float64 {
	return s.multipliers.For(level)
}

// MultiplierForUser resolves the user's current multiplier. A missing
// record defaults to the "new" multiplier; other errors propagate.
func (s *Service) MultiplierForUser(ctx context.Context, userID string) (float64, Level, error) {
	record, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.multipliers.For(LevelNew), LevelNew, nil
		}
		return 0, "", fmt.Errorf("get trust record: %w", err)
	}
	return s.multipliers.For(record.Level), record.Level, nil
}

// AvailableDiscount returns the display-only maximum discount percent
// for a level.
func (s *Service) AvailableDiscount(level Level) int {
	return AvailableDiscountPercent(s.multipliers.For(level))
}

// accumulatedConfidence folds verification weights into a single score.
// Each piece of evidence closes a fraction of the remaining gap to 1.0,
// so repeated weak signals converge without ever exceeding the bound.
func accumulatedConfidence(vs []Verification) float64 {
	remaining := 1.0
	for _, v := range vs {
		remaining *= 1 - clamp01(v.ConfidenceWeight)
	}
	return round3(1 - remaining)
}

// consistencyWeights rebuilds the three signal weights from the same
// evidence. Country evidence feeds IP consistency, payment-sourced
// evidence feeds payment consistency, everything else is behavioral.
func consistencyWeights(vs []Verification) (ip, behavioral, payment float64) {
	ipRemaining, behRemaining, payRemaining := 1.0, 1.0, 1.0
	for _, v := range vs {
		w := 1 - clamp01(v.ConfidenceWeight)
		switch {
		case v.Method == "payment_method" || v.Source == "billing":
			payRemaining *= w
		case v.Field == "country":
			ipRemaining *= w
		default:
			behRemaining *= w
		}
	}
	return round3(1 - ipRemaining), round3(1 - behRemaining), round3(1 - payRemaining)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
