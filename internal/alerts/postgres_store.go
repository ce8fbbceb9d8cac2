package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed alert store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertBatch(ctx context.Context, batch []*Alert) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts
			(id, user_id, alert_type, severity, description, evidence, status, scan_id, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::JSONB, '{}'), $7, $8, NOW())
	`)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range batch {
		status := a.Status
		if status == "" {
			status = StatusPending
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.UserID, a.AlertType, a.Severity,
			a.Description, nullableJSON(a.Evidence), status, a.ScanID); err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, alert_type, severity, COALESCE(description, ''),
		       COALESCE(evidence::TEXT, '{}'), status, COALESCE(scan_id, ''),
		       created_at, resolved_at
		FROM alerts WHERE id = $1
	`, id)

	a, err := scanAlert(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(ctx, `
		SELECT id, user_id, alert_type, severity, COALESCE(description, ''),
		       COALESCE(evidence::TEXT, '{}'), status, COALESCE(scan_id, ''),
		       created_at, resolved_at
		FROM alerts WHERE status = 'pending'
		ORDER BY created_at DESC LIMIT $1
	`, limit)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(ctx, `
		SELECT id, user_id, alert_type, severity, COALESCE(description, ''),
		       COALESCE(evidence::TEXT, '{}'), status, COALESCE(scan_id, ''),
		       created_at, resolved_at
		FROM alerts WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
}

func (s *PostgresStore) Dismiss(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET status = 'resolved', resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or already resolved; disambiguate for the caller.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyResolved
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, q string, args ...any) ([]*Alert, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*Alert
	for rows.Next() {
		a, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func scanAlert(scan func(...any) error) (*Alert, error) {
	a := &Alert{}
	var evidence string
	var resolvedAt sql.NullTime
	if err := scan(&a.ID, &a.UserID, &a.AlertType, &a.Severity, &a.Description,
		&evidence, &a.Status, &a.ScanID, &a.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	a.Evidence = []byte(evidence)
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return a, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
