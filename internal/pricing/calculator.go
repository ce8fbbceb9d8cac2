package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mindhaven/trustengine/internal/metrics"
	"github.com/mindhaven/trustengine/internal/traces"
	"github.com/mindhaven/trustengine/internal/trust"
	"github.com/mindhaven/trustengine/internal/validation"
)

// TrustProvider resolves the caller's current trust multiplier.
type TrustProvider interface {
	MultiplierForUser(ctx context.Context, userID string) (float64, trust.Level, error)
}

// Calculator computes regional prices from country rules and trust state.
type Calculator struct {
	rules RuleStore
	trust TrustProvider
}

// NewCalculator creates a pricing calculator.
func NewCalculator(rules RuleStore, trustProvider TrustProvider) *Calculator {
	return &Calculator{rules: rules, trust: trustProvider}
}

// Calculate resolves a final price for the request.
//
// A nil Result with a nil error means no country could be resolved:
// callers must treat this as "pricing unavailable", never as a zero or
// fully-discounted price. Identical inputs with no intervening trust
// change produce identical results.
func (c *Calculator) Calculate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := traces.StartSpan(ctx, "pricing.Calculate",
		traces.UserID(req.UserID), traces.CountryCode(req.CountryCode))
	defer span.End()

	if req.BasePrice <= 0 {
		metrics.PricingCalculationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("pricing: base price must be positive, got %f", req.BasePrice)
	}

	country := validation.NormalizeCountryCode(req.CountryCode)
	if req.OverrideCountry != "" {
		country = validation.NormalizeCountryCode(req.OverrideCountry)
	}
	if country == "" {
		metrics.PricingCalculationsTotal.WithLabelValues("unavailable").Inc()
		return nil, nil
	}

	rule, err := c.rules.GetRule(ctx, country)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			// No fabricated price for unknown countries.
			metrics.PricingCalculationsTotal.WithLabelValues("unavailable").Inc()
			return nil, nil
		}
		metrics.PricingCalculationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load country rule: %w", err)
	}

	ppp := 1.0
	if rule.PPPEligible && req.EnablePPP {
		ppp = rule.PPPMultiplier
	}

	trustMultiplier, level, err := c.trust.MultiplierForUser(ctx, req.UserID)
	if err != nil {
		metrics.PricingCalculationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve trust multiplier: %w", err)
	}

	finalMultiplier := ppp
	if ppp < 1.0 {
		// Trust-gated discount: a user only receives (1 - trustMultiplier)
		// of the nominal PPP discount.
		discount := (1.0 - ppp) * (1.0 - trustMultiplier)
		finalMultiplier = 1.0 - discount
	}

	subtotal := roundMoney(req.BasePrice * finalMultiplier)

	vatRate := rule.VATRate
	reverseCharge := false
	if req.IsBusiness && validation.IsValidVATNumber(req.VATNumber) {
		// B2B reverse charge: tax is accounted for by the customer.
		vatRate = 0
		reverseCharge = true
	}
	vatAmount := roundMoney(subtotal * vatRate)

	metrics.PricingCalculationsTotal.WithLabelValues("ok").Inc()
	return &Result{
		BasePrice:       req.BasePrice,
		CountryCode:     country,
		PPPMultiplier:   ppp,
		TrustMultiplier: trustMultiplier,
		TrustLevel:      string(level),
		FinalMultiplier: finalMultiplier,
		Subtotal:        subtotal,
		VATRate:         vatRate,
		VATAmount:       vatAmount,
		ReverseCharge:   reverseCharge,
		FinalPrice:      roundMoney(subtotal + vatAmount),
		Currency:        rule.Currency,
	}, nil
}

func roundMoney(f float64) float64 {
	return math.Round(f*100) / 100
}
