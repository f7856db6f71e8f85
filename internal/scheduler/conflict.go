package scheduler

import "fmt"

// ConflictKind describes why a proposed booking cannot be committed.
type ConflictKind string

const (
	// ConflictOccupied indicates an existing appointment already holds the slot.
	ConflictOccupied ConflictKind = "occupied"
	// ConflictBatch indicates two bookings of the same batch target the same slot.
	ConflictBatch ConflictKind = "batch"
	// ConflictPast indicates the booking starts at or before the current moment.
	ConflictPast ConflictKind = "past"
)

// Conflict is a detected scheduling collision. It is a normal return value, not an error.
// Index fields are -1 when they do not apply.
type Conflict struct {
	Kind          ConflictKind
	BatchIndex    int
	OtherIndex    int
	AppointmentID string
	RoomID        string
	RoomName      string
	At            WallClock
}

// IsPast reports whether the booking was rejected for being in the past rather than
// for an occupied slot.
func (c Conflict) IsPast() bool {
	return c.Kind == ConflictPast
}

// Room returns the display name of the room, falling back to its id.
func (c Conflict) Room() string {
	if c.RoomName != "" {
		return c.RoomName
	}
	return c.RoomID
}

// Message renders a human readable explanation naming the room, date and time.
func (c Conflict) Message() string {
	when := fmt.Sprintf("%s at %s", c.At.Date.Long(), c.At.Time.Clock12())
	switch c.Kind {
	case ConflictPast:
		return fmt.Sprintf("Cannot book %s on %s: the time has already passed.", c.Room(), when)
	case ConflictBatch:
		return fmt.Sprintf("Appointments %d and %d both book %s on %s.", c.BatchIndex+1, c.OtherIndex+1, c.Room(), when)
	default:
		return fmt.Sprintf("%s is already booked on %s.", c.Room(), when)
	}
}
