package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error carrying the HTTP status it maps to.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)

	// generic marks the catch-all sentinels that entity-specific errors match.
	generic bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets entity-specific errors match their generic sentinel, so that
// errors.Is(ErrBookNotFound, ErrNotFound) holds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.generic && t.Code == e.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}


// Generic sentinels.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
		generic: true,
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
		generic: true,
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
		generic: true,
	}
)

// Entity-specific sentinels.
var (
	ErrUserNotFound     = ErrNotFound.WithMessage("user not found")
	ErrEmailExists      = ErrAlreadyExists.WithMessage("email already registered")
	ErrAuthorNotFound   = ErrNotFound.WithMessage("author not found")
	ErrBookNotFound     = ErrNotFound.WithMessage("book not found")
	ErrCartItemNotFound = ErrNotFound.WithMessage("cart item not found")
	ErrOrderNotFound    = ErrNotFound.WithMessage("order not found")
)
