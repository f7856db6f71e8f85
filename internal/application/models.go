package application

import (
	"time"

	"github.com/example/clinic-scheduler/internal/recurrence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

// Room is a bookable consultation room.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name string
}

// CreateRoomParams wraps the data required to create a room. ID is optional;
// catalog rooms keep the id operators refer to them by.
type CreateRoomParams struct {
	ID    string
	Input RoomInput
}

// UpdateRoomParams wraps the data required to rename a room.
type UpdateRoomParams struct {
	RoomID string
	Input  RoomInput
}

// CatalogRoom is one entry of the configured room catalog.
type CatalogRoom struct {
	ID   string
	Name string
}

// SyncCatalogResult reports what SyncCatalog changed.
type SyncCatalogResult struct {
	Created   []string
	Renamed   []string
	Unchanged []string
}

// Client is a patient in the clinic directory.
type Client struct {
	ID             string
	IDNumber       string
	FullName       string
	Email          *string
	Phone          *string
	EmergencyPhone *string
	Address        *string
	Age            *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClientInput captures caller provided client fields.
type ClientInput struct {
	IDNumber       string
	FullName       string
	Email          *string
	Phone          *string
	EmergencyPhone *string
	Address        *string
	Age            *int
}

// UpdateClientParams wraps the data required to update a client.
type UpdateClientParams struct {
	ClientID string
	Input    ClientInput
}

// Appointment is a committed booking. Room and client names are resolved by the
// service when the appointment is read and are not persisted.
type Appointment struct {
	ID               string
	ClientID         string
	ClientName       string
	ClientIDNumber   string
	DateTime         scheduler.WallClock
	RoomID           string
	RoomName         string
	AttendanceStatus scheduler.AttendanceStatus
	Comments         string
	IsShared         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Engine returns the view of the appointment the conflict engine works on.
func (a Appointment) Engine() scheduler.Appointment {
	return scheduler.Appointment{
		ID:               a.ID,
		DateTime:         a.DateTime,
		Room:             scheduler.Room{ID: a.RoomID, Name: a.RoomName},
		AttendanceStatus: a.AttendanceStatus,
		Comments:         a.Comments,
		ClientName:       a.ClientName,
		ClientIDNumber:   a.ClientIDNumber,
	}
}

// AppointmentInput captures one requested booking as entered by staff.
type AppointmentInput struct {
	ClientID string
	Date     string
	Time     string
	RoomID   string
	IsShared bool
	Comments string
}

// CreateAppointmentsParams wraps a batch of bookings committed together.
type CreateAppointmentsParams struct {
	Bookings []AppointmentInput
}

// CreateSeriesParams describes a recurring booking. When Rule is set it takes
// precedence over Series and is parsed as an RFC 5545 RRULE.
type CreateSeriesParams struct {
	Booking AppointmentInput
	Series  recurrence.Series
	Rule    string
}

// RescheduleParams moves an appointment. An empty RoomID keeps the current room.
type RescheduleParams struct {
	AppointmentID string
	Date          string
	Time          string
	RoomID        string
}

// UpdateAttendanceParams records the attendance outcome of an appointment.
type UpdateAttendanceParams struct {
	AppointmentID string
	Status        string
}

// UpdateCommentsParams replaces the free-text comments of an appointment.
type UpdateCommentsParams struct {
	AppointmentID string
	Comments      string
}

// ListAppointmentsParams narrows an appointment listing.
type ListAppointmentsParams struct {
	Date     string
	RoomID   string
	ClientID string
	Filter   scheduler.RecordFilter
}

// AppointmentRepositoryFilter narrows queries issued to the appointment repository.
type AppointmentRepositoryFilter struct {
	Date     *scheduler.Date
	RoomID   string
	ClientID string
}

// RoomAvailability lists the rooms free at one date and time.
type RoomAvailability struct {
	Date    scheduler.Date
	Time    scheduler.TimeOfDay
	RoomIDs []string
}
