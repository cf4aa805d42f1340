// Package origin verifies that state-changing requests come from the
// application's own pages.
//
// The source of a request is taken from the Origin header, falling back to
// Referer. It matches when its host equals the request Host or one of the
// configured trusted hosts. Hosts compare case-insensitively and without
// the port.
//
//	checker := origin.New("admin.example.com", "*.example.com")
//	if !checker.Check(r) {
//		// fall back to CSRF token validation
//	}
package origin

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Checker matches request origins against the request host and a trusted list.
type Checker struct {
	exact    map[string]struct{}
	wildcard map[string]struct{}
}

// New creates a Checker. Entries of the form "*.example.com" trust every
// direct subdomain of example.com.
func New(trusted ...string) *Checker {
	c := &Checker{
		exact:    make(map[string]struct{}),
		wildcard: make(map[string]struct{}),
	}
	for _, host := range trusted {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if domain, ok := strings.CutPrefix(host, "*."); ok {
			c.wildcard[normalizeHost(domain)] = struct{}{}
			continue
		}
		c.exact[normalizeHost(host)] = struct{}{}
	}
	return c
}

// Check reports whether the request originates from a trusted host.
// Requests carrying neither Origin nor Referer fail the check.
func (c *Checker) Check(r *http.Request) bool {
	source := Source(r)
	if source == "" {
		return false
	}
	if source == normalizeHost(r.Host) {
		return true
	}
	if _, ok := c.exact[source]; ok {
		return true
	}
	if _, domain, ok := strings.Cut(source, "."); ok {
		if _, ok := c.wildcard[domain]; ok {
			return true
		}
	}
	return false
}

// Source returns the normalized host named by the Origin header, or by the
// Referer header when Origin is absent or "null".
func Source(r *http.Request) string {
	raw := r.Header.Get("Origin")
	if raw == "" || raw == "null" {
		raw = r.Referer()
	}
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return normalizeHost(u.Host)
}

// normalizeHost strips the port and lowercases the host.
func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}
