package service

import "strings"

// DefaultDotlessDomains deliver "a.b+tag@" and "ab@" to the same inbox.
var DefaultDotlessDomains = []string{"gmail.com", "googlemail.com"}

// EmailCanonicalizer maps an address onto the key the user store enforces
// uniqueness on. Every address is lower-cased; for dotless domains the local
// part also loses its dots and any +tag.
type EmailCanonicalizer struct {
	dotless map[string]struct{}
}

// NewEmailCanonicalizer uses DefaultDotlessDomains when domains is nil. An
// empty, non-nil slice disables provider folding.
func NewEmailCanonicalizer(domains []string) *EmailCanonicalizer {
	if domains == nil {
		domains = DefaultDotlessDomains
	}

	c := &EmailCanonicalizer{dotless: make(map[string]struct{}, len(domains))}
	for _, domain := range domains {
		if domain = strings.ToLower(strings.TrimSpace(domain)); domain != "" {
			c.dotless[domain] = struct{}{}
		}
	}
	return c
}

func (c *EmailCanonicalizer) Canonical(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return email
	}

	local, domain := email[:at], strings.TrimSuffix(email[at+1:], ".")
	if _, ok := c.dotless[domain]; ok {
		local, _, _ = strings.Cut(local, "+")
		local = strings.ReplaceAll(local, ".", "")
	}

	return local + "@" + domain
}
