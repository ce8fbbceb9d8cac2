// Package geoip derives a visitor's country from edge-provided request
// metadata. The actual IP-to-country lookup happens at the CDN or load
// balancer; this package only trusts and normalizes what the edge sends.
package geoip

import (
	"net/http"
	"strings"

	"github.com/mindhaven/trustengine/internal/validation"
)

// Resolver derives a country code from an incoming request.
type Resolver interface {
	// Country returns an ISO 3166-1 alpha-2 code, or "" when nothing
	// usable is present.
	Country(r *http.Request) string
}

// HeaderResolver reads the country from a trusted edge header, falling
// back to the region subtag of Accept-Language.
type HeaderResolver struct {
	header string
}

// NewHeaderResolver creates a resolver for the given edge header,
// e.g. "CF-IPCountry".
func NewHeaderResolver(header string) *HeaderResolver {
	return &HeaderResolver{header: header}
}

func (h *HeaderResolver) Country(r *http.Request) string {
	if c := validation.NormalizeCountryCode(r.Header.Get(h.header)); c != "" && c != "XX" {
		return c
	}
	return countryFromAcceptLanguage(r.Header.Get("Accept-Language"))
}

// countryFromAcceptLanguage pulls the region subtag from the first
// language range, e.g. "pt-BR,pt;q=0.9" yields "BR". Weak signal, used
// only when the edge header is absent.
func countryFromAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	first := header
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	parts := strings.Split(strings.TrimSpace(first), "-")
	if len(parts) < 2 {
		return ""
	}
	return validation.NormalizeCountryCode(parts[len(parts)-1])
}
