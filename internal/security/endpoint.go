package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateAPIBaseURL checks that a configured engine base URL is usable
// for outbound API calls. Operator tooling routinely points at localhost
// or in-cluster service addresses, so private and loopback hosts are
// fine; cloud metadata endpoints are rejected because a URL aimed there
// would echo instance credentials back into tool output.
func ValidateAPIBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format")
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https")
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	host := u.Hostname()

	blocked := []string{"metadata.google.internal", "metadata.google"}
	for _, b := range blocked {
		if strings.EqualFold(host, b) {
			return fmt.Errorf("URL host %q is not allowed", host)
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		return checkAPIHostIP(ip)
	}

	return nil
}

// checkAPIHostIP rejects IP literals no engine deployment listens on.
func checkAPIHostIP(ip net.IP) error {
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local addresses are not allowed")
	}
	if ip.IsMulticast() {
		return fmt.Errorf("multicast addresses are not allowed")
	}
	return nil
}
