package geoip

import (
	"net/http/httptest"
	"testing"
)

func TestCountry_EdgeHeaderWins(t *testing.T) {
	resolver := NewHeaderResolver("CF-IPCountry")

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("CF-IPCountry", "br")
	r.Header.Set("Accept-Language", "en-US")

	if got := resolver.Country(r); got != "BR" {
		t.Errorf("Country() = %q, want BR", got)
	}
}

func TestCountry_UnknownEdgeValueFallsBack(t *testing.T) {
	resolver := NewHeaderResolver("CF-IPCountry")

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("CF-IPCountry", "XX")
	r.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	if got := resolver.Country(r); got != "BR" {
		t.Errorf("Country() = %q, want BR from Accept-Language", got)
	}
}

func TestCountry_NoSignals(t *testing.T) {
	resolver := NewHeaderResolver("CF-IPCountry")

	r := httptest.NewRequest("GET", "/", nil)
	if got := resolver.Country(r); got != "" {
		t.Errorf("Country() = %q, want empty", got)
	}
}

func TestCountryFromAcceptLanguage(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"pt-BR,pt;q=0.9", "BR"},
		{"en-US", "US"},
		{"en", ""},
		{"de-DE;q=0.8,en;q=0.5", "DE"},
		{"zh-Hant-TW", "TW"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := countryFromAcceptLanguage(tc.header); got != tc.want {
			t.Errorf("countryFromAcceptLanguage(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
