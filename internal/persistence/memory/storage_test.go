package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/clinic-scheduler/internal/persistence"
)

var baseTime = time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)

func seededStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	s := New()
	for _, room := range []persistence.Room{{ID: "1", Name: "Sala 1"}, {ID: "2", Name: "Sala 2"}} {
		if err := s.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}
	}
	if err := s.CreateClient(ctx, persistence.Client{ID: "c1", IDNumber: "0912345678", FullName: "María Pérez"}); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return s
}

func newAppointment(id, date, tod, roomID string) persistence.Appointment {
	return persistence.Appointment{ID: id, ClientID: "c1", Date: date, Time: tod, RoomID: roomID, CreatedAt: baseTime}
}

func TestStorage_Rooms(t *testing.T) {
	ctx := context.Background()
	s := seededStorage(t)

	if err := s.CreateRoom(ctx, persistence.Room{ID: "3", Name: "Sala 1"}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := s.UpdateRoom(ctx, persistence.Room{ID: "2", Name: "Sala 1"}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on rename, got %v", err)
	}
	if err := s.UpdateRoom(ctx, persistence.Room{ID: "2", Name: "Sala A"}); err != nil {
		t.Fatalf("UpdateRoom failed: %v", err)
	}
	rooms, _ := s.ListRooms(ctx)
	if len(rooms) != 2 || rooms[0].ID != "1" || rooms[1].Name != "Sala A" {
		t.Fatalf("unexpected rooms %+v", rooms)
	}
	if err := s.DeleteRoom(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_ClientsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := seededStorage(t)

	email := "ana@example.com"
	client := persistence.Client{ID: "c2", IDNumber: "0923456789", FullName: "Ana Ruiz", Email: &email}
	if err := s.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	email = "changed@example.com"

	stored, err := s.GetClientByIDNumber(ctx, "0923456789")
	if err != nil {
		t.Fatalf("GetClientByIDNumber failed: %v", err)
	}
	if *stored.Email != "ana@example.com" {
		t.Fatalf("caller mutation leaked into storage: %q", *stored.Email)
	}

	client.ID = "c3"
	if err := s.CreateClient(ctx, client); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for id number, got %v", err)
	}
	negative := -2
	stored.Age = &negative
	if err := s.UpdateClient(ctx, stored); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestStorage_Appointments(t *testing.T) {
	ctx := context.Background()

	t.Run("slot uniqueness", func(t *testing.T) {
		s := seededStorage(t)
		if err := s.CreateAppointments(ctx, []persistence.Appointment{newAppointment("a1", "2025-07-17", "14:30:00", "1")}); err != nil {
			t.Fatalf("CreateAppointments failed: %v", err)
		}
		err := s.CreateAppointments(ctx, []persistence.Appointment{newAppointment("a2", "2025-07-17", "14:30:00", "1")})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if err := s.CreateAppointments(ctx, []persistence.Appointment{newAppointment("a3", "2025-07-17", "14:30:00", "2")}); err != nil {
			t.Fatalf("other room should be accepted: %v", err)
		}
	})

	t.Run("batch is all or nothing", func(t *testing.T) {
		s := seededStorage(t)
		err := s.CreateAppointments(ctx, []persistence.Appointment{
			newAppointment("a1", "2025-08-01", "09:00:00", "1"),
			newAppointment("a2", "2025-08-01", "09:00:00", "1"),
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if _, err := s.GetAppointment(ctx, "a1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected nothing stored, got %v", err)
		}
	})

	t.Run("references", func(t *testing.T) {
		s := seededStorage(t)
		err := s.CreateAppointments(ctx, []persistence.Appointment{newAppointment("a1", "2025-08-01", "09:00:00", "9")})
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
		if err := s.CreateAppointments(ctx, []persistence.Appointment{newAppointment("a1", "2025-08-01", "09:00:00", "1")}); err != nil {
			t.Fatalf("CreateAppointments failed: %v", err)
		}
		if err := s.DeleteRoom(ctx, "1"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected room delete to be restricted, got %v", err)
		}
		if err := s.DeleteClient(ctx, "c1"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected client delete to be restricted, got %v", err)
		}
	})

	t.Run("update keeps the slot invariant", func(t *testing.T) {
		s := seededStorage(t)
		if err := s.CreateAppointments(ctx, []persistence.Appointment{
			newAppointment("a1", "2025-08-01", "09:00:00", "1"),
			newAppointment("a2", "2025-08-01", "10:00:00", "1"),
		}); err != nil {
			t.Fatalf("CreateAppointments failed: %v", err)
		}

		moved, _ := s.GetAppointment(ctx, "a2")
		moved.Time = "09:00:00"
		if err := s.UpdateAppointment(ctx, moved); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		same, _ := s.GetAppointment(ctx, "a1")
		same.AttendanceStatus = "confirmed"
		if err := s.UpdateAppointment(ctx, same); err != nil {
			t.Fatalf("updating in place must not collide with itself: %v", err)
		}

		same.AttendanceStatus = "unknown"
		if err := s.UpdateAppointment(ctx, same); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("list filter and order", func(t *testing.T) {
		s := seededStorage(t)
		if err := s.CreateAppointments(ctx, []persistence.Appointment{
			newAppointment("a1", "2025-08-02", "09:00:00", "1"),
			newAppointment("a2", "2025-08-01", "10:00:00", "2"),
			newAppointment("a3", "2025-08-01", "10:00:00", "1"),
		}); err != nil {
			t.Fatalf("CreateAppointments failed: %v", err)
		}

		all, _ := s.ListAppointments(ctx, persistence.AppointmentFilter{})
		if len(all) != 3 || all[0].ID != "a3" || all[1].ID != "a2" || all[2].ID != "a1" {
			t.Fatalf("unexpected order %+v", all)
		}
		if all[0].AttendanceStatus != "pending" {
			t.Fatalf("expected default attendance, got %q", all[0].AttendanceStatus)
		}

		byRoom, _ := s.ListAppointments(ctx, persistence.AppointmentFilter{RoomID: "2"})
		if len(byRoom) != 1 || byRoom[0].ID != "a2" {
			t.Fatalf("unexpected room filter result %+v", byRoom)
		}
	})
}
