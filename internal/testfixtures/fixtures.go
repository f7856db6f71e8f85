package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

var (
	roomCounter        uint64
	clientCounter      uint64
	appointmentCounter uint64
)

var referenceTime = time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic consultation room record.
type RoomFixture struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Sala %d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// ---------------------------- Client fixtures ----------------------------

// ClientFixture represents a deterministic patient record.
type ClientFixture struct {
	ID        string
	IDNumber  string
	FullName  string
	Email     *string
	Phone     *string
	Age       *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientOption configures the generated client fixture.
type ClientOption func(*ClientFixture)

// NewClientFixture returns a deterministic client fixture with optional overrides.
func NewClientFixture(opts ...ClientOption) ClientFixture {
	idx := atomic.AddUint64(&clientCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Minute)
	fixture := ClientFixture{
		ID:        fmt.Sprintf("client-%03d", idx),
		IDNumber:  fmt.Sprintf("09%08d", idx),
		FullName:  fmt.Sprintf("Client %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClientID overrides the generated client ID.
func WithClientID(id string) ClientOption {
	return func(f *ClientFixture) {
		f.ID = id
	}
}

// WithClientName overrides the generated full name.
func WithClientName(name string) ClientOption {
	return func(f *ClientFixture) {
		f.FullName = name
	}
}

// WithClientIDNumber overrides the generated national id number.
func WithClientIDNumber(idNumber string) ClientOption {
	return func(f *ClientFixture) {
		f.IDNumber = idNumber
	}
}

// WithClientEmail sets the e-mail address on the fixture.
func WithClientEmail(email string) ClientOption {
	return func(f *ClientFixture) {
		value := email
		f.Email = &value
	}
}

// WithClientAge sets the age on the fixture.
func WithClientAge(age int) ClientOption {
	return func(f *ClientFixture) {
		value := age
		f.Age = &value
	}
}

// Application returns the fixture as an application.Client value.
func (f ClientFixture) Application() application.Client {
	return application.Client{
		ID:        f.ID,
		IDNumber:  f.IDNumber,
		FullName:  f.FullName,
		Email:     f.Email,
		Phone:     f.Phone,
		Age:       f.Age,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Client value.
func (f ClientFixture) Persistence() persistence.Client {
	return persistence.Client{
		ID:        f.ID,
		IDNumber:  f.IDNumber,
		FullName:  f.FullName,
		Email:     f.Email,
		Phone:     f.Phone,
		Age:       f.Age,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ClientInput.
func (f ClientFixture) Input() application.ClientInput {
	return application.ClientInput{
		IDNumber: f.IDNumber,
		FullName: f.FullName,
		Email:    f.Email,
		Phone:    f.Phone,
		Age:      f.Age,
	}
}

// ------------------------- Appointment fixtures --------------------------

// AppointmentFixture represents a deterministic booking. The default slot is
// the day after ReferenceTime at 09:00.
type AppointmentFixture struct {
	ID               string
	ClientID         string
	RoomID           string
	DateTime         scheduler.WallClock
	AttendanceStatus scheduler.AttendanceStatus
	Comments         string
	IsShared         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointmentFixture returns a deterministic appointment fixture for the
// given client and room.
func NewAppointmentFixture(clientID, roomID string, opts ...AppointmentOption) AppointmentFixture {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	day := scheduler.WallClockOf(referenceTime).Date.AddDays(1)
	fixture := AppointmentFixture{
		ID:               fmt.Sprintf("appt-%03d", idx),
		ClientID:         clientID,
		RoomID:           roomID,
		DateTime:         day.At(scheduler.MustTime(9, 0)),
		AttendanceStatus: scheduler.AttendancePending,
		CreatedAt:        referenceTime,
		UpdatedAt:        referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAppointmentID overrides the generated appointment ID.
func WithAppointmentID(id string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.ID = id
	}
}

// WithAppointmentAt overrides the booked date and time.
func WithAppointmentAt(at scheduler.WallClock) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.DateTime = at
	}
}

// WithAppointmentStatus overrides the attendance status.
func WithAppointmentStatus(status scheduler.AttendanceStatus) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.AttendanceStatus = status
	}
}

// WithAppointmentComments sets the comments on the fixture.
func WithAppointmentComments(comments string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Comments = comments
	}
}

// Application returns the fixture as an application.Appointment value.
func (f AppointmentFixture) Application() application.Appointment {
	return application.Appointment{
		ID:               f.ID,
		ClientID:         f.ClientID,
		DateTime:         f.DateTime,
		RoomID:           f.RoomID,
		AttendanceStatus: f.AttendanceStatus,
		Comments:         f.Comments,
		IsShared:         f.IsShared,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Appointment value.
func (f AppointmentFixture) Persistence() persistence.Appointment {
	var comments *string
	if f.Comments != "" {
		value := f.Comments
		comments = &value
	}
	return persistence.Appointment{
		ID:               f.ID,
		ClientID:         f.ClientID,
		Date:             f.DateTime.Date.String(),
		Time:             f.DateTime.Time.String(),
		RoomID:           f.RoomID,
		AttendanceStatus: string(f.AttendanceStatus),
		Comments:         comments,
		IsShared:         f.IsShared,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// Input returns the fixture as an application.AppointmentInput.
func (f AppointmentFixture) Input() application.AppointmentInput {
	return application.AppointmentInput{
		ClientID: f.ClientID,
		Date:     f.DateTime.Date.String(),
		Time:     f.DateTime.Time.String(),
		RoomID:   f.RoomID,
		IsShared: f.IsShared,
		Comments: f.Comments,
	}
}
