package services

import (
	"regexp"
	"strings"
)

// emailPattern is the basic local@domain.tld shape accepted by the public lookup
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an email; every store access goes through it
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether a normalized email has the local@domain.tld shape
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
