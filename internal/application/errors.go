package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/clinic-scheduler/internal/scheduler"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSlotTaken is returned when storage rejects a booking whose slot was taken
	// after the conflict check ran.
	ErrSlotTaken = errors.New("application: slot already taken")
	// ErrInUse is returned when a room or client still has appointments.
	ErrInUse = errors.New("application: resource in use")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// addScheduler records a scheduler input error, prefixing its field with prefix.
func (v *ValidationError) addScheduler(prefix string, err error) bool {
	var sErr *scheduler.ValidationError
	if !errors.As(err, &sErr) {
		return false
	}
	field := sErr.Field
	if prefix != "" {
		field = prefix + "." + field
	}
	v.add(field, sErr.Reason)
	return true
}

// ConflictError reports the scheduling conflicts that blocked a write.
type ConflictError struct {
	Conflicts []scheduler.Conflict
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil || len(c.Conflicts) == 0 {
		return "scheduling conflict"
	}
	if len(c.Conflicts) == 1 {
		return c.Conflicts[0].Message()
	}
	return fmt.Sprintf("%s (and %d more)", c.Conflicts[0].Message(), len(c.Conflicts)-1)
}

// Messages returns one human readable line per conflict.
func (c *ConflictError) Messages() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.Conflicts))
	for i, conflict := range c.Conflicts {
		out[i] = conflict.Message()
	}
	return out
}
