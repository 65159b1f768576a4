package registry

import (
	"errors"
	"fmt"
)

// RegistrationErrorCode categorizes rejected registrations.
type RegistrationErrorCode string

const (
	// ErrCodeConflict indicates a second registration for the same key with different content.
	ErrCodeConflict RegistrationErrorCode = "CONFLICT"

	// ErrCodeSealed indicates a registration after the registry was sealed by graph construction.
	ErrCodeSealed RegistrationErrorCode = "SEALED"

	// ErrCodeInvalid indicates a registration missing required fields.
	ErrCodeInvalid RegistrationErrorCode = "INVALID"
)

// RegistrationError reports a rejected registration. Subject names what was
// being registered, e.g. "MIS{graph=SimpleGraph} -> MVC{graph=SimpleGraph}".
type RegistrationError struct {
	Code    RegistrationErrorCode
	Subject string
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Subject, e.Message)
}

// IsConflict returns true if err is a conflicting duplicate registration.
func IsConflict(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re) && re.Code == ErrCodeConflict
}

// IsSealed returns true if err is a registration against a sealed registry.
func IsSealed(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re) && re.Code == ErrCodeSealed
}
