package persistence

import "time"

// Room represents a bookable consultation room.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Client represents a patient in the clinic directory.
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

// Appointment is a booking stored with its literal wall-clock date and time.
// Date is YYYY-MM-DD and Time is HH:MM:SS; neither ever carries a zone.
type Appointment struct {
	ID               string
	ClientID         string
	Date             string
	Time             string
	RoomID           string
	AttendanceStatus string
	Comments         *string
	IsShared         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
