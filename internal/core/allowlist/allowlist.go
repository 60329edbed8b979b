// Package allowlist restricts which media hosts the service will resolve.
package allowlist

import (
	"net/url"
	"strings"
)

// Allowlist matches request URLs against a fixed set of permitted domains.
// A host is accepted when it equals a configured domain or is a subdomain
// of one.
type Allowlist struct {
	domains []string
}

// New builds an Allowlist from the configured domain list. Entries are
// normalized to lowercase; empty entries are dropped.
func New(domains []string) *Allowlist {
	l := &Allowlist{domains: make([]string, 0, len(domains))}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			l.domains = append(l.domains, d)
		}
	}
	return l
}

// Allowed reports whether raw parses to a URL whose host is covered by the
// list. Ports are ignored. Anything unparseable is rejected.
func (l *Allowlist) Allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range l.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
