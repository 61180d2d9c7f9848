package services

import (
	"strings"
	"unicode"
)

const passwordSymbols = "!@$%^&*+#"

// IsValidPassword accepts 6 to 255 characters drawn from ASCII letters,
// digits and passwordSymbols, with at least one uppercase letter, one digit
// and one symbol.
func IsValidPassword(password string) bool {
	if len(password) < 6 || len(password) > 255 {
		return false
	}

	hasUpper := false
	hasDigit := false
	hasSymbol := false
	for _, char := range password {
		switch {
		case char > unicode.MaxASCII:
			return false
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
		case unicode.IsDigit(char):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, char):
			hasSymbol = true
		default:
			return false
		}
	}

	return hasUpper && hasDigit && hasSymbol
}
