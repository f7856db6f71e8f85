package application

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/clinic-scheduler/internal/scheduler"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"time": "invalid", "date": "invalid"}}
	if got := withFields.Error(); got != "validation failed: date, time" {
		t.Fatalf("expected sorted field names in message, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestValidationError_AddScheduler(t *testing.T) {
	t.Parallel()

	_, err := scheduler.ParseDate("2025-02-30")
	vErr := &ValidationError{}
	if !vErr.addScheduler("bookings[2]", err) {
		t.Fatalf("expected scheduler error to be recognised")
	}
	if _, ok := vErr.FieldErrors["bookings[2].date"]; !ok {
		t.Fatalf("expected prefixed field, got %v", vErr.FieldErrors)
	}
	if vErr.addScheduler("", errors.New("other")) {
		t.Fatalf("expected foreign error to be ignored")
	}
}

func TestConflictError(t *testing.T) {
	t.Parallel()

	at := scheduler.MustDate(2025, time.July, 17).At(scheduler.MustTime(14, 30))
	conflict := scheduler.Conflict{Kind: scheduler.ConflictOccupied, RoomID: "1", RoomName: "Sala 1", At: at, BatchIndex: 0, OtherIndex: -1}
	single := &ConflictError{Conflicts: []scheduler.Conflict{conflict}}
	if got := single.Error(); got != "Sala 1 is already booked on Thursday, July 17, 2025 at 2:30 PM." {
		t.Fatalf("unexpected message %q", got)
	}

	double := &ConflictError{Conflicts: []scheduler.Conflict{conflict, conflict}}
	if got := double.Error(); got != single.Error()+" (and 1 more)" {
		t.Fatalf("unexpected message %q", got)
	}
	if len(double.Messages()) != 2 {
		t.Fatalf("expected one message per conflict")
	}

	wrapped := fmt.Errorf("create: %w", single)
	var target *ConflictError
	if !errors.As(wrapped, &target) || ErrorKind(wrapped) != "conflict" {
		t.Fatalf("expected wrapped conflict to be detected")
	}
}
