// Package pricing computes geography- and trust-adjusted prices.
//
// A country's purchasing-power-parity (PPP) multiplier sets the nominal
// regional discount; the caller's trust level gates how much of that
// discount is actually granted. The trust gate is the anti-arbitrage
// rule: low-trust accounts claiming a discounted region receive only a
// fraction of the nominal discount, and blocked accounts none of it.
package pricing

import (
	"context"
	"errors"
	"time"
)

// ErrRuleNotFound is returned when no business rule exists for a country.
var ErrRuleNotFound = errors.New("pricing: country rule not found")

// CountryRule is the read-only business-rule row for one country.
// The table is reference data maintained elsewhere.
type CountryRule struct {
	CountryCode   string    `json:"countryCode"`
	PPPMultiplier float64   `json:"pppMultiplier"` // <1.0 means a discount is offered
	PPPEligible   bool      `json:"pppEligible"`
	VATRate       float64   `json:"vatRate"` // e.g. 0.19 for 19%
	Currency      string    `json:"currency"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RuleStore reads country business rules.
type RuleStore interface {
	// GetRule returns the rule for a country code, or ErrRuleNotFound.
	GetRule(ctx context.Context, countryCode string) (*CountryRule, error)

	// ListRules returns all configured rules.
	ListRules(ctx context.Context) ([]*CountryRule, error)
}

// Request carries the inputs for one pricing calculation.
type Request struct {
	BasePrice       float64
	CountryCode     string
	OverrideCountry string // optional caller-supplied override
	EnablePPP       bool
	IsBusiness      bool
	VATNumber       string
	UserID          string
}

// Result is the ephemeral outcome of one calculation. It is computed on
// demand and never persisted.
type Result struct {
	BasePrice       float64 `json:"basePrice"`
	CountryCode     string  `json:"countryCode"`
	PPPMultiplier   float64 `json:"pppMultiplier"`
	TrustMultiplier float64 `json:"trustMultiplier"`
	TrustLevel      string  `json:"trustLevel"`
	FinalMultiplier float64 `json:"finalMultiplier"`
	Subtotal        float64 `json:"subtotal"` // base * final multiplier, before tax
	VATRate         float64 `json:"vatRate"`
	VATAmount       float64 `json:"vatAmount"`
	ReverseCharge   bool    `json:"reverseCharge"`
	FinalPrice      float64 `json:"finalPrice"`
	Currency        string  `json:"currency"`
}
