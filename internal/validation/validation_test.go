package validation

import "testing"

func TestIsValidCountryCode(t *testing.T) {
	valid := []string{"US", "DE", "NG", "BR"}
	for _, c := range valid {
		if !IsValidCountryCode(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}

	invalid := []string{"", "us", "USA", "U1", "D-"}
	for _, c := range invalid {
		if IsValidCountryCode(c) {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}

func TestIsValidVATNumber(t *testing.T) {
	valid := []string{"DE123456789", "GB999973", "FRXX123456789", " de123456789 "}
	for _, v := range valid {
		if !IsValidVATNumber(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}

	invalid := []string{"", "123456789", "D", "DE1"}
	for _, v := range invalid {
		if IsValidVATNumber(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}

func TestIsValidUserID(t *testing.T) {
	if !IsValidUserID("user_42-a") {
		t.Error("expected user_42-a to be valid")
	}
	if IsValidUserID("") || IsValidUserID("has space") {
		t.Error("expected invalid IDs to be rejected")
	}
}

func TestNormalizeCountryCode(t *testing.T) {
	if got := NormalizeCountryCode(" de "); got != "DE" {
		t.Errorf("expected DE, got %q", got)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  ", 20); got != "helloworld" {
		t.Errorf("unexpected sanitized value %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Errorf("expected truncation, got %q", got)
	}
}
