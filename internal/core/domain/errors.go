package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingField       = errors.New("missing fields for new user")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrInvalidRole        = errors.New("invalid role")
	ErrProtectedAccount   = errors.New("account is protected")
	ErrStorage            = errors.New("storage failure")

	// ErrUnauthorized matches every UnauthorizedError regardless of cause.
	ErrUnauthorized = errors.New("admin authorization required")
)

// UnauthorizedCause identifies which admin-gate check failed.
type UnauthorizedCause int

const (
	CauseMissingToken UnauthorizedCause = iota + 1
	CauseUnknownToken
	CauseInsufficientRole
)

func (c UnauthorizedCause) String() string {
	switch c {
	case CauseMissingToken:
		return "missing token"
	case CauseUnknownToken:
		return "unknown token"
	case CauseInsufficientRole:
		return "insufficient role"
	default:
		return "unknown"
	}
}

// UnauthorizedError is returned by the admin gate. Callers on the wire only
// ever see ErrUnauthorized; the cause is kept for logs and tests.
type UnauthorizedError struct {
	Cause UnauthorizedCause
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnauthorized, e.Cause)
}

func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// Unauthorized builds an UnauthorizedError for cause.
func Unauthorized(cause UnauthorizedCause) error {
	return &UnauthorizedError{Cause: cause}
}
