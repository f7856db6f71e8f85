// Package memory provides a map-backed persistence layer with the same contracts
// as the SQLite store. It is used by tests and by `clinic --memory`.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// Storage implements the room, client and appointment repositories in memory.
type Storage struct {
	mu           sync.RWMutex
	rooms        map[string]persistence.Room
	clients      map[string]persistence.Client
	appointments map[string]persistence.Appointment
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		rooms:        make(map[string]persistence.Room),
		clients:      make(map[string]persistence.Client),
		appointments: make(map[string]persistence.Appointment),
	}
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room. Names are unique.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || strings.TrimSpace(room.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueRoomNameLocked(room.ID, room.Name); err != nil {
		return err
	}

	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom renames an existing room.
func (s *Storage) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || strings.TrimSpace(room.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueRoomNameLocked(room.ID, room.Name); err != nil {
		return err
	}

	existing.Name = room.Name
	existing.UpdatedAt = room.UpdatedAt
	s.rooms[room.ID] = existing
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then ID.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// DeleteRoom removes a room that holds no appointments.
func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, appt := range s.appointments {
		if appt.RoomID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.rooms, id)
	return nil
}

func (s *Storage) ensureUniqueRoomNameLocked(id, name string) error {
	for _, room := range s.rooms {
		if room.ID != id && room.Name == name {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- ClientRepository implementation ---

// CreateClient stores a new client. Id numbers are unique.
func (s *Storage) CreateClient(ctx context.Context, client persistence.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueIDNumberLocked(client.ID, client.IDNumber); err != nil {
		return err
	}

	s.clients[client.ID] = cloneClient(client)
	return nil
}

// UpdateClient overwrites the mutable fields of an existing client.
func (s *Storage) UpdateClient(ctx context.Context, client persistence.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.clients[client.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueIDNumberLocked(client.ID, client.IDNumber); err != nil {
		return err
	}

	client.CreatedAt = existing.CreatedAt
	s.clients[client.ID] = cloneClient(client)
	return nil
}

// GetClient retrieves a client by ID.
func (s *Storage) GetClient(ctx context.Context, id string) (persistence.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return persistence.Client{}, persistence.ErrNotFound
	}
	return cloneClient(client), nil
}

// GetClientByIDNumber retrieves a client by national id number.
func (s *Storage) GetClientByIDNumber(ctx context.Context, idNumber string) (persistence.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, client := range s.clients {
		if client.IDNumber == idNumber {
			return cloneClient(client), nil
		}
	}
	return persistence.Client{}, persistence.ErrNotFound
}

// ListClients returns all clients ordered by full name then ID.
func (s *Storage) ListClients(ctx context.Context) ([]persistence.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]persistence.Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, cloneClient(client))
	}
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].FullName == clients[j].FullName {
			return clients[i].ID < clients[j].ID
		}
		return clients[i].FullName < clients[j].FullName
	})
	return clients, nil
}

// DeleteClient removes a client that holds no appointments.
func (s *Storage) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, appt := range s.appointments {
		if appt.ClientID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.clients, id)
	return nil
}

func (s *Storage) ensureUniqueIDNumberLocked(id, idNumber string) error {
	for _, client := range s.clients {
		if client.ID != id && client.IDNumber == idNumber {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

func validateClient(client persistence.Client) error {
	if client.ID == "" || strings.TrimSpace(client.IDNumber) == "" || strings.TrimSpace(client.FullName) == "" {
		return persistence.ErrConstraintViolation
	}
	if client.Age != nil && *client.Age < 0 {
		return persistence.ErrConstraintViolation
	}
	return nil
}

// --- AppointmentRepository implementation ---

// CreateAppointments stores every appointment or none of them.
func (s *Storage) CreateAppointments(ctx context.Context, appointments []persistence.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]persistence.Appointment, len(appointments))
	taken := make(map[slotKey]struct{}, len(appointments))
	for _, appt := range appointments {
		appt.AttendanceStatus = attendanceOrDefault(appt.AttendanceStatus)
		if err := s.checkAppointmentLocked(appt); err != nil {
			return err
		}
		if _, ok := s.appointments[appt.ID]; ok {
			return persistence.ErrDuplicate
		}
		if _, ok := pending[appt.ID]; ok {
			return persistence.ErrDuplicate
		}
		key := keyOf(appt)
		if _, ok := taken[key]; ok {
			return persistence.ErrDuplicate
		}
		if err := s.ensureSlotFreeLocked(appt.ID, key); err != nil {
			return err
		}
		pending[appt.ID] = appt
		taken[key] = struct{}{}
	}

	for id, appt := range pending {
		s.appointments[id] = cloneAppointment(appt)
	}
	return nil
}

// UpdateAppointment overwrites the mutable fields of an existing appointment.
func (s *Storage) UpdateAppointment(ctx context.Context, appt persistence.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.appointments[appt.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	appt.AttendanceStatus = attendanceOrDefault(appt.AttendanceStatus)
	if err := s.checkAppointmentLocked(appt); err != nil {
		return err
	}
	if err := s.ensureSlotFreeLocked(appt.ID, keyOf(appt)); err != nil {
		return err
	}

	appt.CreatedAt = existing.CreatedAt
	s.appointments[appt.ID] = cloneAppointment(appt)
	return nil
}

// GetAppointment retrieves an appointment by ID.
func (s *Storage) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appointments[id]
	if !ok {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	return cloneAppointment(appt), nil
}

// ListAppointments returns matching appointments ordered by date, time and room.
func (s *Storage) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointments := make([]persistence.Appointment, 0)
	for _, appt := range s.appointments {
		if !matchesAppointmentFilter(appt, filter) {
			continue
		}
		appointments = append(appointments, cloneAppointment(appt))
	}
	sort.Slice(appointments, func(i, j int) bool {
		a, b := appointments[i], appointments[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.RoomID < b.RoomID
	})
	return appointments, nil
}

// DeleteAppointment removes an appointment by ID.
func (s *Storage) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

type slotKey struct {
	date   string
	time   string
	roomID string
}

func keyOf(appt persistence.Appointment) slotKey {
	return slotKey{date: appt.Date, time: appt.Time, roomID: appt.RoomID}
}

func (s *Storage) checkAppointmentLocked(appt persistence.Appointment) error {
	if appt.ID == "" || appt.ClientID == "" || appt.RoomID == "" || appt.Date == "" || appt.Time == "" {
		return persistence.ErrConstraintViolation
	}
	if len(appt.Date) != len("2006-01-02") || len(appt.Time) != len("15:04:05") {
		return persistence.ErrConstraintViolation
	}
	switch appt.AttendanceStatus {
	case "pending", "confirmed", "no_attendance", "reprogrammed":
	default:
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.rooms[appt.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.clients[appt.ClientID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	return nil
}

func (s *Storage) ensureSlotFreeLocked(id string, key slotKey) error {
	for _, other := range s.appointments {
		if other.ID != id && keyOf(other) == key {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

func matchesAppointmentFilter(appt persistence.Appointment, filter persistence.AppointmentFilter) bool {
	if filter.Date != "" && appt.Date != filter.Date {
		return false
	}
	if filter.RoomID != "" && appt.RoomID != filter.RoomID {
		return false
	}
	if filter.ClientID != "" && appt.ClientID != filter.ClientID {
		return false
	}
	return true
}

func attendanceOrDefault(status string) string {
	if status == "" {
		return "pending"
	}
	return status
}

// --- Helpers ---

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	copy := *v
	return &copy
}

func cloneClient(client persistence.Client) persistence.Client {
	clone := client
	clone.Email = cloneString(client.Email)
	clone.Phone = cloneString(client.Phone)
	clone.EmergencyPhone = cloneString(client.EmergencyPhone)
	clone.Address = cloneString(client.Address)
	if client.Age != nil {
		age := *client.Age
		clone.Age = &age
	}
	return clone
}

func cloneAppointment(appt persistence.Appointment) persistence.Appointment {
	clone := appt
	clone.Comments = cloneString(appt.Comments)
	return clone
}
