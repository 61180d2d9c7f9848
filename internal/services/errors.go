package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials        = errors.New("invalid username or password")
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrUniqueViolation           = errors.New("value already in use")
	ErrOverlap                   = errors.New("availability periods overlap")
	ErrStatusUnchanged           = errors.New("application already has this status")
	ErrPasswordMismatch          = errors.New("passwords do not match")
	ErrPasscodeNotFound          = errors.New("no passcode was requested for this email")
	ErrInvalidPasscode           = errors.New("invalid passcode")
	ErrPasscodeExpired           = errors.New("passcode expired")
	ErrPasscodeAttemptsExceeded  = errors.New("too many invalid passcodes, request a new one")
	ErrPasscodeNotConfirmed      = errors.New("passcode not confirmed")
	ErrCompetenceCatalogNotReady = errors.New("competence catalog is empty")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	if err.Field == "" {
		return err.Message
	}
	return fmt.Sprintf("%s: %s", err.Field, err.Message)
}

func newValidationError(field string, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError names the field whose value is already taken.
type ConflictError struct {
	Field string
}

func (err *ConflictError) Error() string {
	return fmt.Sprintf("%s is already in use", err.Field)
}

func (err *ConflictError) Unwrap() error {
	return ErrUniqueViolation
}
