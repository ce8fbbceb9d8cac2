package pricing

import (
	"context"
	"sync"
)

// MemoryRuleStore is an in-memory country rule table for demo/development mode.
type MemoryRuleStore struct {
	rules map[string]*CountryRule
	mu    sync.RWMutex
}

// NewMemoryRuleStore creates a rule store with the given rules.
func NewMemoryRuleStore(rules []*CountryRule) *MemoryRuleStore {
	m := &MemoryRuleStore{rules: make(map[string]*CountryRule, len(rules))}
	for _, r := range rules {
		cp := *r
		m.rules[r.CountryCode] = &cp
	}
	return m
}

// SeedRules is a small development dataset mirroring the production
// reference table. PPP figures are indicative, not authoritative.
func SeedRules() []*CountryRule {
	return []*CountryRule{
		{CountryCode: "US", PPPMultiplier: 1.00, PPPEligible: false, VATRate: 0.00, Currency: "USD"},
		{CountryCode: "GB", PPPMultiplier: 1.00, PPPEligible: false, VATRate: 0.20, Currency: "GBP"},
		{CountryCode: "DE", PPPMultiplier: 1.00, PPPEligible: false, VATRate: 0.19, Currency: "EUR"},
		{CountryCode: "FR", PPPMultiplier: 1.00, PPPEligible: false, VATRate: 0.20, Currency: "EUR"},
		{CountryCode: "IN", PPPMultiplier: 0.40, PPPEligible: true, VATRate: 0.18, Currency: "INR"},
		{CountryCode: "NG", PPPMultiplier: 0.40, PPPEligible: true, VATRate: 0.075, Currency: "NGN"},
		{CountryCode: "BR", PPPMultiplier: 0.50, PPPEligible: true, VATRate: 0.17, Currency: "BRL"},
		{CountryCode: "TR", PPPMultiplier: 0.50, PPPEligible: true, VATRate: 0.20, Currency: "TRY"},
		{CountryCode: "PH", PPPMultiplier: 0.45, PPPEligible: true, VATRate: 0.12, Currency: "PHP"},
	}
}

func (m *MemoryRuleStore) GetRule(ctx context.Context, countryCode string) (*CountryRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rule, ok := m.rules[countryCode]
	if !ok {
		return nil, ErrRuleNotFound
	}
	cp := *rule
	return &cp, nil
}

func (m *MemoryRuleStore) ListRules(ctx context.Context) ([]*CountryRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*CountryRule, 0, len(m.rules))
	for _, rule := range m.rules {
		cp := *rule
		result = append(result, &cp)
	}
	return result, nil
}
