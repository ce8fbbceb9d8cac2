package pricing

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRuleStore reads country rules from PostgreSQL.
type PostgresRuleStore struct {
	db *sql.DB
}

// NewPostgresRuleStore creates a new PostgreSQL-backed rule store.
func NewPostgresRuleStore(db *sql.DB) *PostgresRuleStore {
	return &PostgresRuleStore{db: db}
}

func (s *PostgresRuleStore) GetRule(ctx context.Context, countryCode string) (*CountryRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT country_code, ppp_multiplier, ppp_eligible, vat_rate, currency, updated_at
		FROM country_rules WHERE country_code = $1
	`, countryCode)

	r := &CountryRule{}
	err := row.Scan(&r.CountryCode, &r.PPPMultiplier, &r.PPPEligible, &r.VATRate, &r.Currency, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresRuleStore) ListRules(ctx context.Context) ([]*CountryRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country_code, ppp_multiplier, ppp_eligible, vat_rate, currency, updated_at
		FROM country_rules ORDER BY country_code
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*CountryRule
	for rows.Next() {
		r := &CountryRule{}
		if err := rows.Scan(&r.CountryCode, &r.PPPMultiplier, &r.PPPEligible, &r.VATRate, &r.Currency, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
