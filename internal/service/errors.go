package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all services. The HTTP layer maps each to a
// status code; everything else becomes a generic internal error.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrQuotaExceeded      = errors.New("free limit reached, upgrade to premium for unlimited generations")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnavailable        = errors.New("service unavailable")
	ErrGeneration         = errors.New("image generation failed")
	ErrEnhancement        = errors.New("prompt enhancement failed")
	ErrVerification       = errors.New("payment verification failed")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
