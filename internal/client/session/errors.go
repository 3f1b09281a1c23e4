package session

import (
	"errors"
	"fmt"
)

var (
	// Validation errors, returned before any network call.
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidOTP       = errors.New("otp must not be empty")

	// ErrConnection covers transport failures and unreadable answers.
	ErrConnection = errors.New("server connection error")

	// ErrIncompleteAuth means the backend accepted the login but the record
	// it produced cannot be used (e.g. an unrecognised business id).
	ErrIncompleteAuth = errors.New("incomplete auth data")

	ErrNotAuthenticated = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient permissions")
)

// AuthError is a failure reported by the backend itself. Message is the
// backend's text, shown to the user as is.
type AuthError struct {
	Message string
	Code    string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}
