package service

import "errors"

// Error kinds. Every error returned by a service either unwraps to one of
// these or is an unexpected store failure.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// kindError carries a client-facing message and unwraps to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func validationError(msg string) error { return newError(ErrValidation, msg) }

var (
	// Auth
	ErrNameInUse          = newError(ErrValidation, "username already in use")
	ErrEmailInUse         = newError(ErrValidation, "email already in use")
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid credentials")
	ErrInvalidToken       = newError(ErrUnauthorized, "invalid token")
	ErrExpiredToken       = newError(ErrUnauthorized, "token has expired")

	// Lookups
	ErrUserNotFound  = newError(ErrNotFound, "user not found")
	ErrGroupNotFound = newError(ErrNotFound, "anime group not found")
	ErrEntryNotFound = newError(ErrNotFound, "entry not found")

	// Moderation
	ErrNotOwner          = newError(ErrForbidden, "not authorized")
	ErrInvalidEntryIndex = newError(ErrValidation, "invalid entry index")
	ErrCannotDeleteAdmin = newError(ErrValidation, "cannot delete admin accounts")
	ErrInvalidLinkIndex  = newError(ErrValidation, "invalid link index")
	ErrInvalidCategory   = newError(ErrValidation, "category must be anime or manga")
	ErrWrongPassword     = newError(ErrUnauthorized, "current password is incorrect")
	ErrNothingToUpdate   = newError(ErrValidation, "nothing to update")
)

// IsConflict reports errors that map to a uniqueness clash.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNameInUse) || errors.Is(err, ErrEmailInUse)
}
