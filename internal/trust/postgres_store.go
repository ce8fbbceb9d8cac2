package trust

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed trust store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, level, confidence, verification_count,
		       ip_consistency, behavioral_consistency, payment_consistency,
		       COALESCE(verifications::TEXT, '[]'), created_at, updated_at
		FROM trust_records WHERE user_id = $1
	`, userID)

	r := &Record{}
	var verifications string
	err := row.Scan(&r.UserID, &r.Level, &r.Confidence, &r.VerificationCount,
		&r.IPConsistency, &r.BehavioralConsistency, &r.PaymentConsistency,
		&verifications, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(verifications), &r.Verifications); err != nil {
		return nil, fmt.Errorf("decode verifications: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *Record) error {
	verifications, err := json.Marshal(record.Verifications)
	if err != nil {
		return fmt.Errorf("encode verifications: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trust_records
			(user_id, level, confidence, verification_count,
			 ip_consistency, behavioral_consistency, payment_consistency,
			 verifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::JSONB, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			level = EXCLUDED.level,
			confidence = EXCLUDED.confidence,
			verification_count = EXCLUDED.verification_count,
			ip_consistency = EXCLUDED.ip_consistency,
			behavioral_consistency = EXCLUDED.behavioral_consistency,
			payment_consistency = EXCLUDED.payment_consistency,
			verifications = EXCLUDED.verifications,
			updated_at = NOW()
	`, record.UserID, record.Level, record.Confidence, record.VerificationCount,
		record.IPConsistency, record.BehavioralConsistency, record.PaymentConsistency,
		string(verifications))
	return err
}

func (s *PostgresStore) SetLevel(ctx context.Context, userID string, level Level) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trust_records SET level = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, level)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListLowConfidence(ctx context.Context, maxConfidence float64, minVerifications int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, level, confidence, verification_count,
		       ip_consistency, behavioral_consistency, payment_consistency,
		       COALESCE(verifications::TEXT, '[]'), created_at, updated_at
		FROM trust_records
		WHERE confidence < $1 AND verification_count >= $2
	`, maxConfidence, minVerifications)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		var verifications string
		if err := rows.Scan(&r.UserID, &r.Level, &r.Confidence, &r.VerificationCount,
			&r.IPConsistency, &r.BehavioralConsistency, &r.PaymentConsistency,
			&verifications, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(verifications), &r.Verifications); err != nil {
			return nil, fmt.Errorf("decode verifications: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
