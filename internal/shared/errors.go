package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the identifier does not resolve to a record.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the request carries no authenticated principal.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates the principal lacks the required role or ownership.
	ErrForbidden = errors.New("not authorized to perform this action")
	// ErrInvalidCredentials indicates a login or password verification failure.
	// The message is identical for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMethodNotSupported indicates an HTTP method outside the resource contract.
	ErrMethodNotSupported = errors.New("method not allowed")
	// ErrStorage indicates a collaborator-level storage fault.
	ErrStorage = errors.New("storage failure")
)

// ValidationError reports every missing or invalid field at once so a client
// can fix all problems in one round trip.
type ValidationError struct {
	Fields []string
}

// NewValidationError constructs a ValidationError for the given field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// AsValidation unwraps err into a ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StorageError wraps a collaborator fault so internal error text never reaches
// the caller. The cause stays available for logging via Unwrap.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
