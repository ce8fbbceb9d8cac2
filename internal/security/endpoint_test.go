package security

import "testing"

func TestValidateAPIBaseURL(t *testing.T) {
	valid := []string{
		"http://localhost:8080",
		"http://127.0.0.1:8080",
		"https://trustengine.internal.mindhaven.io",
		"http://10.0.12.4:8080", // in-cluster service address
	}
	for _, u := range valid {
		if err := ValidateAPIBaseURL(u); err != nil {
			t.Errorf("ValidateAPIBaseURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"not a url at all\x7f",
		"ftp://trustengine:8080",
		"http://",
		"http://metadata.google.internal/computeMetadata/v1/",
		"http://METADATA.GOOGLE.INTERNAL",
		"http://169.254.169.254/latest/meta-data/",
		"http://0.0.0.0:8080",
	}
	for _, u := range invalid {
		if err := ValidateAPIBaseURL(u); err == nil {
			t.Errorf("ValidateAPIBaseURL(%q) = nil, want error", u)
		}
	}
}
