package persistence

import "context"

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ClientRepository exposes CRUD operations for the patient directory.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) error
	UpdateClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, id string) (Client, error)
	GetClientByIDNumber(ctx context.Context, idNumber string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// AppointmentFilter narrows appointment queries. Empty fields match everything.
type AppointmentFilter struct {
	Date     string
	RoomID   string
	ClientID string
}

// AppointmentRepository stores appointments. Implementations reject a second
// appointment in the same (date, time, room) slot with ErrDuplicate.
type AppointmentRepository interface {
	// CreateAppointments stores every appointment or none of them.
	CreateAppointments(ctx context.Context, appointments []Appointment) error
	UpdateAppointment(ctx context.Context, appointment Appointment) error
	GetAppointment(ctx context.Context, id string) (Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}
