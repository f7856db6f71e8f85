package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/persistence/sqlite"
	"github.com/example/clinic-scheduler/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Store        *sqlite.Store
	Rooms        persistence.RoomRepository
	Clients      persistence.ClientRepository
	Appointments persistence.AppointmentRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "clinic.db")

	store, err := sqlite.Open(migration.DefaultSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := store.Migrate(context.Background(), nil); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:        store,
		Rooms:        store.Rooms,
		Clients:      store.Clients,
		Appointments: store.Appointments,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedRooms stores the given room fixtures, failing the test on error.
func (h *SQLiteHarness) SeedRooms(tb testing.TB, rooms ...RoomFixture) {
	tb.Helper()
	for _, room := range rooms {
		if err := h.Rooms.CreateRoom(context.Background(), room.Persistence()); err != nil {
			tb.Fatalf("failed to seed room %s: %v", room.ID, err)
		}
	}
}

// SeedClients stores the given client fixtures, failing the test on error.
func (h *SQLiteHarness) SeedClients(tb testing.TB, clients ...ClientFixture) {
	tb.Helper()
	for _, client := range clients {
		if err := h.Clients.CreateClient(context.Background(), client.Persistence()); err != nil {
			tb.Fatalf("failed to seed client %s: %v", client.ID, err)
		}
	}
}

// SeedAppointments stores the given appointment fixtures in one batch.
func (h *SQLiteHarness) SeedAppointments(tb testing.TB, appointments ...AppointmentFixture) {
	tb.Helper()
	models := make([]persistence.Appointment, len(appointments))
	for i, appt := range appointments {
		models[i] = appt.Persistence()
	}
	if err := h.Appointments.CreateAppointments(context.Background(), models); err != nil {
		tb.Fatalf("failed to seed appointments: %v", err)
	}
}
