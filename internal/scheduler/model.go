package scheduler

import (
	"fmt"
	"strings"
)

// Room is a bookable resource.
type Room struct {
	ID   string
	Name string
}

// AttendanceStatus is the post-hoc outcome of an appointment.
type AttendanceStatus string

const (
	AttendancePending      AttendanceStatus = "pending"
	AttendanceConfirmed    AttendanceStatus = "confirmed"
	AttendanceNoAttendance AttendanceStatus = "no_attendance"
	AttendanceReprogrammed AttendanceStatus = "reprogrammed"
)

var attendanceLabels = map[AttendanceStatus]string{
	AttendancePending:      "Pendiente",
	AttendanceConfirmed:    "Confirmado",
	AttendanceNoAttendance: "No asistió",
	AttendanceReprogrammed: "Reprogramada",
}

// AttendanceStatuses lists every status in display order.
func AttendanceStatuses() []AttendanceStatus {
	return []AttendanceStatus{AttendancePending, AttendanceConfirmed, AttendanceNoAttendance, AttendanceReprogrammed}
}

// ParseAttendanceStatus accepts the wire value of a status, case-insensitively.
func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	status := AttendanceStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", newValidationError("attendanceStatus", value, "unknown attendance status")
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	_, ok := attendanceLabels[s]
	return ok
}

// Label returns the display label shown to clinic staff.
func (s AttendanceStatus) Label() string {
	if label, ok := attendanceLabels[s]; ok {
		return label
	}
	return string(s)
}

// Appointment is a committed booking as seen by the engine. The engine never mutates it.
type Appointment struct {
	ID               string
	DateTime         WallClock
	Room             Room
	AttendanceStatus AttendanceStatus
	Comments         string
	ClientName       string
	ClientIDNumber   string
}

// ProposedBooking is a booking the caller wants to commit.
type ProposedBooking struct {
	Date   Date
	Time   TimeOfDay
	RoomID string
}

// ParseProposedBooking builds a booking from its raw form fields.
func ParseProposedBooking(date, timeOfDay, roomID string) (ProposedBooking, error) {
	d, err := ParseDate(date)
	if err != nil {
		return ProposedBooking{}, err
	}
	t, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return ProposedBooking{}, err
	}
	b := ProposedBooking{Date: d, Time: t, RoomID: strings.TrimSpace(roomID)}
	if err := b.validate(); err != nil {
		return ProposedBooking{}, err
	}
	return b, nil
}

// BookingFrom returns the slot an existing appointment occupies.
func BookingFrom(a Appointment) ProposedBooking {
	return ProposedBooking{Date: a.DateTime.Date, Time: a.DateTime.Time, RoomID: a.Room.ID}
}

// At returns the wall clock the booking starts at.
func (b ProposedBooking) At() WallClock {
	return b.Date.At(b.Time)
}

// String renders the booking slot for logs.
func (b ProposedBooking) String() string {
	return fmt.Sprintf("%s room=%s", b.At(), b.RoomID)
}

func (b ProposedBooking) validate() error {
	if b.RoomID == "" {
		return newValidationError("roomId", b.RoomID, "room is required")
	}
	if _, err := NewDate(b.Date.Year, b.Date.Month, b.Date.Day); err != nil {
		return newValidationError("date", b.Date.String(), "not a calendar day")
	}
	if _, err := NewTimeOfDay(b.Time.Hour, b.Time.Minute, b.Time.Second); err != nil {
		return newValidationError("time", b.Time.String(), "out of range")
	}
	return nil
}
