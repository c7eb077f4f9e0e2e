package validation

import (
	"regexp"
	"unicode/utf8"
)

const (
	ClientIDMinLen   = 3
	ClientIDMaxLen   = 100
	SecretMinLen     = 8
	SecretMaxLen     = 255
	ClientNameMinLen = 2
	ClientNameMaxLen = 200

	MinAccessTokenTTL = 60
	MaxAccessTokenTTL = 86400
)

var clientIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidClientID: 3..100 caracteres de [a-zA-Z0-9_-].
func ValidClientID(id string) bool {
	return len(id) >= ClientIDMinLen && len(id) <= ClientIDMaxLen && clientIDRe.MatchString(id)
}

// ValidSecret: 8..255 caracteres (runes).
func ValidSecret(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= SecretMinLen && n <= SecretMaxLen
}

// ValidClientName: 2..200 caracteres (runes).
func ValidClientName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= ClientNameMinLen && n <= ClientNameMaxLen
}

// ValidAccessTokenTTL: 60..86400 segundos.
func ValidAccessTokenTTL(ttl int64) bool {
	return ttl >= MinAccessTokenTTL && ttl <= MaxAccessTokenTTL
}
