package scheduler

import "fmt"

// ValidationError reports malformed engine input. The offending value is never coerced.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Value == "" {
		return fmt.Sprintf("scheduler: invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("scheduler: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func newValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
