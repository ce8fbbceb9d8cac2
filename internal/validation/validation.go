// Package validation provides input validation for the trust engine API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

var (
	// countryCodeRegex validates ISO 3166-1 alpha-2 country codes
	countryCodeRegex = regexp.MustCompile(`^[A-Z]{2}$`)
	// vatNumberRegex validates EU-style VAT numbers: country prefix plus 2-13 alphanumerics
	vatNumberRegex = regexp.MustCompile(`^[A-Z]{2}[0-9A-Za-z]{2,13}$`)
	// userIDRegex keeps user identifiers to a safe charset
	userIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidCountryCode checks if a string is a valid ISO alpha-2 country code
func IsValidCountryCode(code string) bool {
	return countryCodeRegex.MatchString(code)
}

// IsValidVATNumber checks the shape of a VAT registration number.
// It does not verify registration against VIES; format only.
func IsValidVATNumber(vat string) bool {
	return vatNumberRegex.MatchString(strings.ToUpper(strings.TrimSpace(vat)))
}

// IsValidUserID checks if a string is an acceptable user identifier
func IsValidUserID(id string) bool {
	return userIDRegex.MatchString(id)
}

// NormalizeCountryCode trims and upper-cases a country code
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SanitizeString removes null bytes, trims whitespace, and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.ReplaceAll(s, "\x00", "")
}
