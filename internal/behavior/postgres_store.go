package behavior

import (
	"context"
	"database/sql"
	"time"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed event store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event *Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO behavioral_events
			(id, user_id, event_type, country_claimed, country_detected,
			 ip_address, timezone_offset, language_preference, user_agent,
			 risk_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`, event.ID, event.UserID, event.EventType, event.CountryClaimed,
		event.CountryDetected, event.IPAddress, event.TimezoneOffset,
		event.LanguagePreference, event.UserAgent, event.RiskScore)
	return err
}

func (s *PostgresStore) EventsSince(ctx context.Context, since time.Time) ([]*Event, error) {
	return s.query(ctx, `
		SELECT id, user_id, event_type, country_claimed, country_detected,
		       COALESCE(ip_address, ''), timezone_offset,
		       COALESCE(language_preference, ''), COALESCE(user_agent, ''),
		       risk_score, created_at
		FROM behavioral_events
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
}

func (s *PostgresStore) EventsByTypeSince(ctx context.Context, eventType string, since time.Time) ([]*Event, error) {
	return s.query(ctx, `
		SELECT id, user_id, event_type, country_claimed, country_detected,
		       COALESCE(ip_address, ''), timezone_offset,
		       COALESCE(language_preference, ''), COALESCE(user_agent, ''),
		       risk_score, created_at
		FROM behavioral_events
		WHERE event_type = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`, eventType, since)
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.CountryClaimed,
			&e.CountryDetected, &e.IPAddress, &e.TimezoneOffset,
			&e.LanguagePreference, &e.UserAgent, &e.RiskScore, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
