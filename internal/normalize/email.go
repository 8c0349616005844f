package normalize

import "strings"

// Email canonicalizes a raw email address: trim and lower-case. Matching is
// case-insensitive for the whole address including the local part; RFC 5321
// makes local parts case-sensitive, but for contact identity two addresses
// differing only in case are the same person. Returns false when the result
// is not shaped like an address (one "@", non-empty local part, dotted
// domain).
func Email(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return "", false
	}
	domain := s[at+1:]
	if domain == "" || !strings.Contains(domain, ".") ||
		strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}
	return s, true
}

// EmailLocalPart returns the local part of an address after normalization.
func EmailLocalPart(raw string) (string, bool) {
	s, ok := Email(raw)
	if !ok {
		return "", false
	}
	return s[:strings.Index(s, "@")], true
}
