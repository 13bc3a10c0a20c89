package domain

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^\d]`)

// PhoneNormalizer turns a local or international number into a backend identifier
type PhoneNormalizer struct {
	CountryCode  string // e.g. 593
	TrunkPrefix  string // local prefix replaced by CountryCode, e.g. 0
	DomainSuffix string // e.g. @c.us
}

// Normalize strips non-digits, replaces a leading trunk prefix with the country code
// and appends the domain suffix. Normalizing an identifier twice yields the same identifier.
func (n PhoneNormalizer) Normalize(phone string) string {
	digits := nonDigits.ReplaceAllString(stripSuffix(phone, n.DomainSuffix), "")
	if n.TrunkPrefix != "" && strings.HasPrefix(digits, n.TrunkPrefix) {
		digits = n.CountryCode + strings.TrimPrefix(digits, n.TrunkPrefix)
	}
	return digits + n.DomainSuffix
}

// UserPart returns the digits of an identifier without its domain
func UserPart(identifier string) string {
	if i := strings.IndexByte(identifier, '@'); i >= 0 {
		identifier = identifier[:i]
	}
	return nonDigits.ReplaceAllString(identifier, "")
}

func stripSuffix(phone, suffix string) string {
	if suffix != "" && strings.HasSuffix(phone, suffix) {
		return strings.TrimSuffix(phone, suffix)
	}
	if i := strings.IndexByte(phone, '@'); i >= 0 {
		return phone[:i]
	}
	return phone
}
