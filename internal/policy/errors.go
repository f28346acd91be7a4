package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Request-scoped failure taxonomy. Handlers map these onto HTTP statuses;
// nothing here is fatal to the process.
var (
	// ErrUnauthenticated is returned for mutating actions by anonymous callers
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned for mutating actions by non-owning callers
	ErrForbidden = errors.New("access denied")
	// ErrNotFound is returned for references to nonexistent records
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed or constraint-violating input with
// field-level detail.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a ValidationError if it is one
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
