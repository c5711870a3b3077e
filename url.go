package pagesense

import (
	"net"
	"net/url"
	"strings"
)

// ValidateExternalURL checks that rawURL uses http/https, has a hostname,
// and does not target a private, loopback, or link-local address. Literal
// IPs are checked directly; hostnames are resolved and every address is
// checked, so internal names cannot slip through. Returns an EBLOCKED error
// before any page navigation happens.
func ValidateExternalURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Errorf(EINVALID, "invalid URL: %v", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Errorf(EBLOCKED, "blocked: only http and https URLs are allowed")
	}
	host := u.Hostname()
	if host == "" {
		return Errorf(EINVALID, "URL has no host")
	}
	if strings.EqualFold(host, "localhost") {
		return Errorf(EBLOCKED, "blocked: URL targets a private or loopback address")
	}

	if ip := net.ParseIP(host); ip != nil {
		if isInternalIP(ip) {
			return Errorf(EBLOCKED, "blocked: URL targets a private or loopback address")
		}
		return nil
	}

	// Resolve the hostname and check all addresses. DNS failure is allowed
	// through: the navigation itself will fail with a network error.
	addrs, err := net.LookupHost(host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isInternalIP(ip) {
			return Errorf(EBLOCKED, "blocked: URL resolves to a private or loopback address")
		}
	}
	return nil
}

// isInternalIP reports whether ip belongs to a range that should never be
// reached by a page capture: loopback, RFC1918 private, link-local
// (including the cloud metadata endpoint), unique-local, and unspecified.
func isInternalIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
