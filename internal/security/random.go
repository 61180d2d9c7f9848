package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	digitAlphabet            = "0123456789"
	upperAlphabet            = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordSymbolAlphabet   = "!@$%^&*+#"
	temporaryPasswordCharset = upperAlphabet + "abcdefghijkmnopqrstuvwxyz23456789"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	value := make([]byte, length)
	for index := range value {
		position, err := randomIndex(len(alphabet))
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position]
	}

	return string(value), nil
}

// NumericCode returns a string of random decimal digits, used for one-time
// passcodes.
func NumericCode(length int) (string, error) {
	return RandomString(length, digitAlphabet)
}

// TemporaryPassword returns a random password with at least one uppercase
// letter, one digit and one symbol.
func TemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	required := make([]byte, 0, 3)
	for _, alphabet := range []string{upperAlphabet, digitAlphabet, passwordSymbolAlphabet} {
		char, err := RandomString(1, alphabet)
		if err != nil {
			return "", err
		}
		required = append(required, char[0])
	}

	rest, err := RandomString(length-len(required), temporaryPasswordCharset)
	if err != nil {
		return "", err
	}

	value := append(required, rest...)
	for index := len(value) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		value[index], value[swap] = value[swap], value[index]
	}
	return string(value), nil
}

func randomIndex(limit int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
