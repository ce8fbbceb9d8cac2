package pricing

import (
	"context"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"github.com/mindhaven/trustengine/internal/trust"
)

func testCalculator(t *testing.T) (*Calculator, *trust.Service) {
	t.Helper()
	trustSvc := trust.NewService(trust.NewMemoryStore(), slog.Default())
	rules := NewMemoryRuleStore([]*CountryRule{
		{CountryCode: "BR", PPPMultiplier: 0.5, PPPEligible: true, VATRate: 0.0, Currency: "BRL"},
		{CountryCode: "NG", PPPMultiplier: 0.4, PPPEligible: true, VATRate: 0.075, Currency: "NGN"},
		{CountryCode: "DE", PPPMultiplier: 1.0, PPPEligible: false, VATRate: 0.19, Currency: "EUR"},
	})
	return NewCalculator(rules, trustSvc), trustSvc
}

func TestCalculate_NewUserGetsPartialDiscount(t *testing.T) {
	calc, _ := testCalculator(t)

	// ppp 0.5, new trust multiplier 0.70:
	// discount = 0.5 * 0.30 = 0.15 → final multiplier 0.85 → price 85.
	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "BR", EnablePPP: true, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
	if math.Abs(res.FinalMultiplier-0.85) > 1e-9 {
		t.Errorf("final multiplier = %f, want 0.85", res.FinalMultiplier)
	}
	if math.Abs(res.FinalPrice-85) > 1e-9 {
		t.Errorf("final price = %f, want 85", res.FinalPrice)
	}
	if res.TrustLevel != string(trust.LevelNew) {
		t.Errorf("trust level = %q, want new", res.TrustLevel)
	}
}

func TestCalculate_FinalMultiplierBounds(t *testing.T) {
	calc, _ := testCalculator(t)
	ctx := context.Background()

	levels := []trust.Level{trust.LevelNew, trust.LevelBuilding, trust.LevelTrusted, trust.LevelSuspicious, trust.LevelBlocked}
	for _, level := range levels {
		userID := "user-" + string(level)
		rec := trust.NewRecord(userID)
		rec.Level = level

		store := trust.NewMemoryStore()
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
		levelCalc := NewCalculator(calc.rules, trust.NewService(store, slog.Default()))

		res, err := levelCalc.Calculate(ctx, Request{
			BasePrice: 100, CountryCode: "NG", EnablePPP: true, UserID: userID,
		})
		if err != nil {
			t.Fatalf("Calculate failed for %s: %v", level, err)
		}
		// Trust can only reduce the discount versus the country baseline,
		// never push the price above base.
		if res.FinalMultiplier < res.PPPMultiplier || res.FinalMultiplier > 1.0 {
			t.Errorf("level %s: final multiplier %f outside [%f, 1.0]",
				level, res.FinalMultiplier, res.PPPMultiplier)
		}
	}
}

func TestCalculate_BlockedGetsNoDiscount(t *testing.T) {
	store := trust.NewMemoryStore()
	rec := trust.NewRecord("blocked-user")
	rec.Level = trust.LevelBlocked
	if err := store.Put(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	rules := NewMemoryRuleStore([]*CountryRule{
		{CountryCode: "NG", PPPMultiplier: 0.4, PPPEligible: true, Currency: "NGN"},
	})
	calc := NewCalculator(rules, trust.NewService(store, slog.Default()))

	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "NG", EnablePPP: true, UserID: "blocked-user",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if res.FinalMultiplier != 1.0 {
		t.Errorf("blocked final multiplier = %f, want 1.0", res.FinalMultiplier)
	}
	if res.FinalPrice != 100 {
		t.Errorf("blocked price = %f, want 100", res.FinalPrice)
	}
}

func TestCalculate_IneligibleCountryIgnoresTrust(t *testing.T) {
	calc, _ := testCalculator(t)

	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "DE", EnablePPP: true, IsBusiness: false, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if res.PPPMultiplier != 1.0 || res.FinalMultiplier != 1.0 {
		t.Errorf("ineligible country multipliers = (%f, %f), want (1.0, 1.0)",
			res.PPPMultiplier, res.FinalMultiplier)
	}
	// German VAT applies on top.
	if math.Abs(res.FinalPrice-119) > 1e-9 {
		t.Errorf("price with VAT = %f, want 119", res.FinalPrice)
	}
}

func TestCalculate_ReverseChargeZeroRatesVAT(t *testing.T) {
	calc, _ := testCalculator(t)

	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "DE", EnablePPP: true,
		IsBusiness: true, VATNumber: "DE123456789", UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !res.ReverseCharge || res.VATAmount != 0 {
		t.Errorf("expected reverse charge with zero VAT, got %+v", res)
	}
	if res.FinalPrice != 100 {
		t.Errorf("reverse-charge price = %f, want 100", res.FinalPrice)
	}
}

func TestCalculate_UnknownCountryIsUnavailable(t *testing.T) {
	calc, _ := testCalculator(t)

	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "ZZ", EnablePPP: true, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result for unknown country, got %+v", res)
	}
}

func TestCalculate_DisabledPPPKeepsFullPrice(t *testing.T) {
	calc, _ := testCalculator(t)

	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "BR", EnablePPP: false, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if res.FinalMultiplier != 1.0 {
		t.Errorf("final multiplier with PPP disabled = %f, want 1.0", res.FinalMultiplier)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	calc, _ := testCalculator(t)
	req := Request{BasePrice: 100, CountryCode: "NG", EnablePPP: true, UserID: "user-1"}

	first, err := calc.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, err := calc.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestCalculate_RejectsNonPositiveBase(t *testing.T) {
	calc, _ := testCalculator(t)

	if _, err := calc.Calculate(context.Background(), Request{
		BasePrice: 0, CountryCode: "BR", EnablePPP: true,
	}); err == nil {
		t.Error("expected error for zero base price")
	}
}

func TestCalculate_OverrideCountryWins(t *testing.T) {
	calc, _ := testCalculator(t)

	res, err := calc.Calculate(context.Background(), Request{
		BasePrice: 100, CountryCode: "DE", OverrideCountry: "br",
		EnablePPP: true, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if res.CountryCode != "BR" {
		t.Errorf("country = %q, want BR (normalized override)", res.CountryCode)
	}
}
