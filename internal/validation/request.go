package validation

import (
	"regexp"
	"strings"
)

// Client request id rules:
// - Generated by the mobile client (usually a UUID, but any opaque id works).
// - Chars [A-Za-z0-9._:-], length 8..128.
// - No whitespace; the id participates in the idempotency key derivation so
//   it must be stable byte-for-byte across retries.
var clientRequestIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{6,126}[A-Za-z0-9]$`)

// ValidClientRequestID returns true if the id is usable as an idempotency key part.
func ValidClientRequestID(id string) bool {
	return clientRequestIDRe.MatchString(id)
}

// Email: intentionally permissive, the check is a gate against garbage, not
// full RFC 5322 parsing. Lowercasing happens at the service layer.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail returns true for a plausible email address (max 254 chars).
func ValidEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRe.MatchString(email)
}

// Person/display name: 1..120 chars, no control characters.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 120 {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Phone: digits with optional leading + and separators, 7..20 significant chars.
var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,18}[0-9]$`)

func ValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}
