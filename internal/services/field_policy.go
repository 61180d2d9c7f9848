package services

import (
	"regexp"
	"strings"
)

var (
	nameRegex           = regexp.MustCompile(`^[A-Za-z]{2,255}$`)
	usernameRegex       = regexp.MustCompile(`^[A-Za-z0-9]{6,255}$`)
	personalNumberRegex = regexp.MustCompile(`^[0-9]{12}$`)
	emailRegex          = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func IsValidName(value string) bool {
	return nameRegex.MatchString(value)
}

func IsValidUsername(value string) bool {
	return usernameRegex.MatchString(value)
}

func IsValidPersonalNumber(value string) bool {
	return personalNumberRegex.MatchString(value)
}

// IsValidEmail is a shape check: one "@", a dot after it and no whitespace.
func IsValidEmail(value string) bool {
	return emailRegex.MatchString(value)
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func NormalizeUsername(raw string) string {
	return strings.TrimSpace(raw)
}
