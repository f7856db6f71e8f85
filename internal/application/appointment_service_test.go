package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/recurrence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

var serviceNow = time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)

type appointmentRepoStub struct {
	appointments map[string]Appointment
	createErr    error
	listCalls    int
	createCalls  int
}

func newAppointmentRepoStub(appts ...Appointment) *appointmentRepoStub {
	stub := &appointmentRepoStub{appointments: make(map[string]Appointment)}
	for _, appt := range appts {
		stub.appointments[appt.ID] = appt
	}
	return stub
}

func (r *appointmentRepoStub) CreateAppointments(ctx context.Context, appts []Appointment) ([]Appointment, error) {
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, appt := range appts {
		r.appointments[appt.ID] = appt
	}
	return appts, nil
}

func (r *appointmentRepoStub) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	appt, ok := r.appointments[id]
	if !ok {
		return Appointment{}, persistence.ErrNotFound
	}
	return appt, nil
}

func (r *appointmentRepoStub) UpdateAppointment(ctx context.Context, appt Appointment) (Appointment, error) {
	if _, ok := r.appointments[appt.ID]; !ok {
		return Appointment{}, persistence.ErrNotFound
	}
	r.appointments[appt.ID] = appt
	return appt, nil
}

func (r *appointmentRepoStub) DeleteAppointment(ctx context.Context, id string) error {
	if _, ok := r.appointments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *appointmentRepoStub) ListAppointments(ctx context.Context, filter AppointmentRepositoryFilter) ([]Appointment, error) {
	r.listCalls++
	out := make([]Appointment, 0, len(r.appointments))
	for _, appt := range r.appointments {
		if filter.Date != nil && appt.DateTime.Date != *filter.Date {
			continue
		}
		if filter.RoomID != "" && appt.RoomID != filter.RoomID {
			continue
		}
		if filter.ClientID != "" && appt.ClientID != filter.ClientID {
			continue
		}
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type serviceHarness struct {
	svc          *AppointmentService
	appointments *appointmentRepoStub
	rooms        *roomRepoStub
	clients      *clientRepoStub
}

func newServiceHarness(t *testing.T, existing ...Appointment) *serviceHarness {
	t.Helper()
	h := &serviceHarness{
		appointments: newAppointmentRepoStub(existing...),
		rooms: newRoomRepoStub(
			Room{ID: "1", Name: "Sala 1"},
			Room{ID: "2", Name: "Sala 2"},
			Room{ID: "3", Name: "Sala 3"},
		),
		clients: newClientRepoStub(
			Client{ID: "c1", IDNumber: "0912345678", FullName: "María Pérez"},
			Client{ID: "c2", IDNumber: "0923456789", FullName: "Ana Ruiz"},
		),
	}
	counter := 0
	h.svc = NewAppointmentService(AppointmentServiceDeps{
		Appointments: h.appointments,
		Rooms:        h.rooms,
		Clients:      h.clients,
		Recurrence:   recurrence.NewEngine(8),
		IDGenerator: func() string {
			counter++
			return "appt-" + string(rune('a'+counter-1))
		},
		Now:          func() time.Time { return serviceNow },
		Location:     time.UTC,
		MaxBatchSize: 3,
		SlotOptions:  scheduler.SlotOptions{SlotMinutes: 30, StartHour: 8, EndHour: 12},
		SnapshotTTL:  time.Minute,
	})
	return h
}

func stored(id, clientID, date, tod, roomID string) Appointment {
	d, _ := scheduler.ParseDate(date)
	t, _ := scheduler.ParseTimeOfDay(tod)
	return Appointment{
		ID:               id,
		ClientID:         clientID,
		DateTime:         d.At(t),
		RoomID:           roomID,
		AttendanceStatus: scheduler.AttendancePending,
	}
}

func TestAppointmentService_CreateAppointments(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid batch with resolved names", func(t *testing.T) {
		h := newServiceHarness(t)

		created, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "c1", Date: "2025-07-17", Time: "14:30", RoomID: "1", Comments: "  primera cita "},
			{ClientID: "c1", Date: "2025-07-17", Time: "14:30", RoomID: "2", IsShared: true},
		}})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(created) != 2 || h.appointments.createCalls != 1 {
			t.Fatalf("expected one batched write of two appointments, got %d/%d", len(created), h.appointments.createCalls)
		}
		first := created[0]
		if first.ID != "appt-a" || first.RoomName != "Sala 1" || first.ClientName != "María Pérez" || first.ClientIDNumber != "0912345678" {
			t.Fatalf("unexpected appointment %+v", first)
		}
		if first.DateTime.String() != "2025-07-17T14:30:00" || first.AttendanceStatus != scheduler.AttendancePending {
			t.Fatalf("unexpected slot or status %+v", first)
		}
		if first.Comments != "primera cita" || !created[1].IsShared || !first.CreatedAt.Equal(serviceNow) {
			t.Fatalf("unexpected details %+v", created)
		}
	})

	t.Run("reports field errors with batch positions", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "c1", Date: "2025-07-17", Time: "14:30", RoomID: "1"},
			{ClientID: "", Date: "2025-02-30", Time: "25:00", RoomID: ""},
		}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["bookings[1].clientId"]; !ok {
			t.Fatalf("expected clientId error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["bookings[1].date"]; !ok {
			t.Fatalf("expected date error, got %v", vErr.FieldErrors)
		}
		if h.appointments.createCalls != 0 {
			t.Fatalf("nothing must be written on validation failure")
		}
	})

	t.Run("rejects unknown rooms and clients", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "ghost", Date: "2025-07-17", Time: "14:30", RoomID: "9"},
		}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["bookings[0].roomId"]; !ok {
			t.Fatalf("expected roomId error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["bookings[0].clientId"]; !ok {
			t.Fatalf("expected clientId error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("enforces the batch limit", func(t *testing.T) {
		h := newServiceHarness(t)

		bookings := make([]AppointmentInput, 4)
		for i := range bookings {
			bookings[i] = AppointmentInput{ClientID: "c1", Date: "2025-07-17", Time: "09:00", RoomID: "1"}
		}
		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: bookings})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["bookings"]; !ok {
			t.Fatalf("expected bookings error, got %v", vErr.FieldErrors)
		}

		_, err = h.svc.CreateAppointments(ctx, CreateAppointmentsParams{})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for empty batch, got %v", err)
		}
	})

	t.Run("returns the occupying appointment as a conflict", func(t *testing.T) {
		h := newServiceHarness(t, stored("x1", "c2", "2025-07-17", "14:30:00", "1"))

		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "c1", Date: "2025-07-17", Time: "14:30:00.000Z", RoomID: "1"},
		}})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		c := cErr.Conflicts[0]
		if c.Kind != scheduler.ConflictOccupied || c.AppointmentID != "x1" || c.BatchIndex != 0 {
			t.Fatalf("unexpected conflict %+v", c)
		}
		if !strings.Contains(err.Error(), "Sala 1") || !strings.Contains(err.Error(), "2:30 PM") {
			t.Fatalf("expected message naming room and time, got %q", err.Error())
		}
		if h.appointments.createCalls != 0 {
			t.Fatalf("nothing must be written on conflict")
		}
	})

	t.Run("detects duplicates inside the batch", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "c1", Date: "2025-07-17", Time: "09:00", RoomID: "2"},
			{ClientID: "c2", Date: "2025-07-17", Time: "09:00", RoomID: "2"},
		}})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		c := cErr.Conflicts[0]
		if c.Kind != scheduler.ConflictBatch || c.BatchIndex != 0 || c.OtherIndex != 1 || c.RoomName != "Sala 2" {
			t.Fatalf("unexpected conflict %+v", c)
		}
	})

	t.Run("rejects past bookings and names the room", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "c1", Date: "2025-07-01", Time: "10:00", RoomID: "3"},
		}})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if !cErr.Conflicts[0].IsPast() || cErr.Conflicts[0].Room() != "Sala 3" {
			t.Fatalf("unexpected conflict %+v", cErr.Conflicts[0])
		}
	})

	t.Run("maps a storage uniqueness race to ErrSlotTaken", func(t *testing.T) {
		h := newServiceHarness(t)
		h.appointments.createErr = persistence.ErrDuplicate

		_, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
			{ClientID: "c1", Date: "2025-07-17", Time: "09:00", RoomID: "1"},
		}})
		if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("expected ErrSlotTaken, got %v", err)
		}
	})
}

func TestAppointmentService_CreateSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("expands and stores every occurrence", func(t *testing.T) {
		h := newServiceHarness(t)

		created, err := h.svc.CreateSeries(ctx, CreateSeriesParams{
			Booking: AppointmentInput{ClientID: "c1", Date: "2025-07-07", Time: "09:00", RoomID: "1"},
			Series: recurrence.Series{
				Frequency: recurrence.FrequencyWeekly,
				Count:     5,
				Weekdays:  []time.Weekday{time.Monday, time.Thursday},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		want := []string{"2025-07-07", "2025-07-10", "2025-07-14", "2025-07-17", "2025-07-21"}
		if len(created) != len(want) {
			t.Fatalf("expected %d occurrences, got %d", len(want), len(created))
		}
		for i, appt := range created {
			if appt.DateTime.Date.String() != want[i] || appt.DateTime.Time.Short() != "09:00" || appt.RoomID != "1" {
				t.Fatalf("occurrence %d: unexpected %+v", i, appt)
			}
		}
	})

	t.Run("accepts an RRULE", func(t *testing.T) {
		h := newServiceHarness(t)

		created, err := h.svc.CreateSeries(ctx, CreateSeriesParams{
			Booking: AppointmentInput{ClientID: "c2", Date: "2025-07-07", Time: "11:30", RoomID: "2"},
			Rule:    "RRULE:FREQ=DAILY;COUNT=3",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(created) != 3 || created[2].DateTime.String() != "2025-07-09T11:30:00" {
			t.Fatalf("unexpected occurrences %+v", created)
		}
	})

	t.Run("an occupied occurrence blocks the whole series", func(t *testing.T) {
		h := newServiceHarness(t, stored("x1", "c2", "2025-07-14", "09:00:00", "1"))

		_, err := h.svc.CreateSeries(ctx, CreateSeriesParams{
			Booking: AppointmentInput{ClientID: "c1", Date: "2025-07-07", Time: "09:00", RoomID: "1"},
			Series:  recurrence.Series{Frequency: recurrence.FrequencyWeekly, Count: 3},
		})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.Conflicts[0].BatchIndex != 1 || cErr.Conflicts[0].AppointmentID != "x1" {
			t.Fatalf("unexpected conflict %+v", cErr.Conflicts[0])
		}
		if len(h.appointments.appointments) != 1 {
			t.Fatalf("nothing must be written on conflict")
		}
	})

	t.Run("reports invalid series", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateSeries(ctx, CreateSeriesParams{
			Booking: AppointmentInput{ClientID: "c1", Date: "2025-07-07", Time: "09:00", RoomID: "1"},
			Series:  recurrence.Series{Frequency: recurrence.FrequencyDaily, Count: 20},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["series"]; !ok {
			t.Fatalf("expected series error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("reports an unparseable rule", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateSeries(ctx, CreateSeriesParams{
			Booking: AppointmentInput{ClientID: "c1", Date: "2025-07-07", Time: "09:00", RoomID: "1"},
			Rule:    "not a rule",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["rule"]; !ok {
			t.Fatalf("expected rule error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("names unknown references after the booking", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.svc.CreateSeries(ctx, CreateSeriesParams{
			Booking: AppointmentInput{ClientID: "ghost", Date: "2025-07-07", Time: "09:00", RoomID: "9"},
			Series:  recurrence.Series{Frequency: recurrence.FrequencyDaily, Count: 2},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"booking.clientId", "booking.roomId"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s error, got %v", field, vErr.FieldErrors)
			}
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected only booking fields, got %v", vErr.FieldErrors)
		}
	})
}

func TestAppointmentService_RescheduleAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("moves to a free slot", func(t *testing.T) {
		h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "09:00:00", "1"))

		appt, err := h.svc.RescheduleAppointment(ctx, RescheduleParams{AppointmentID: "x1", Date: "2025-07-18", Time: "10:30"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if appt.DateTime.String() != "2025-07-18T10:30:00" || appt.RoomID != "1" || appt.RoomName != "Sala 1" {
			t.Fatalf("unexpected appointment %+v", appt)
		}
		if !appt.UpdatedAt.Equal(serviceNow) {
			t.Fatalf("expected update time to be set")
		}
	})

	t.Run("keeping the same slot is not a conflict", func(t *testing.T) {
		h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "09:00:00", "1"))

		if _, err := h.svc.RescheduleAppointment(ctx, RescheduleParams{AppointmentID: "x1", Date: "2025-07-17", Time: "09:00"}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("rejects occupied slots", func(t *testing.T) {
		h := newServiceHarness(t,
			stored("x1", "c1", "2025-07-17", "09:00:00", "1"),
			stored("x2", "c2", "2025-07-17", "10:00:00", "2"),
		)

		_, err := h.svc.RescheduleAppointment(ctx, RescheduleParams{AppointmentID: "x1", Date: "2025-07-17", Time: "10:00", RoomID: "2"})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.Conflicts[0].AppointmentID != "x2" {
			t.Fatalf("unexpected conflict %+v", cErr.Conflicts[0])
		}
	})

	t.Run("rejects the current moment", func(t *testing.T) {
		h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "09:00:00", "1"))

		_, err := h.svc.RescheduleAppointment(ctx, RescheduleParams{AppointmentID: "x1", Date: "2025-07-01", Time: "10:00"})
		var cErr *ConflictError
		if !errors.As(err, &cErr) || !cErr.Conflicts[0].IsPast() {
			t.Fatalf("expected past conflict, got %v", err)
		}
	})

	t.Run("validates input and existence", func(t *testing.T) {
		h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "09:00:00", "1"))

		if _, err := h.svc.RescheduleAppointment(ctx, RescheduleParams{AppointmentID: "nope", Date: "2025-07-18", Time: "10:00"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		_, err := h.svc.RescheduleAppointment(ctx, RescheduleParams{AppointmentID: "x1", Date: "2025-07-18", Time: "10:00", RoomID: "9"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["roomId"]; !ok {
			t.Fatalf("expected roomId error, got %v", vErr.FieldErrors)
		}
	})
}

func TestAppointmentService_AttendanceAndComments(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t, stored("x1", "c1", "2025-06-20", "09:00:00", "1"))

	appt, err := h.svc.UpdateAttendance(ctx, UpdateAttendanceParams{AppointmentID: "x1", Status: "NO_ATTENDANCE"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if appt.AttendanceStatus != scheduler.AttendanceNoAttendance {
		t.Fatalf("unexpected status %q", appt.AttendanceStatus)
	}

	_, err = h.svc.UpdateAttendance(ctx, UpdateAttendanceParams{AppointmentID: "x1", Status: "late"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["attendanceStatus"]; !ok {
		t.Fatalf("expected attendanceStatus error, got %v", vErr.FieldErrors)
	}

	appt, err = h.svc.UpdateComments(ctx, UpdateCommentsParams{AppointmentID: "x1", Comments: " llamó para confirmar "})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if appt.Comments != "llamó para confirmar" || appt.AttendanceStatus != scheduler.AttendanceNoAttendance {
		t.Fatalf("unexpected appointment %+v", appt)
	}

	if err := h.svc.DeleteAppointment(ctx, "x1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := h.svc.GetAppointment(ctx, "x1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAppointmentService_ListAppointments(t *testing.T) {
	ctx := context.Background()
	confirmed := stored("x3", "c2", "2025-07-18", "09:00:00", "2")
	confirmed.AttendanceStatus = scheduler.AttendanceConfirmed
	h := newServiceHarness(t,
		stored("x1", "c1", "2025-07-17", "09:00:00", "1"),
		stored("x2", "c1", "2025-07-17", "11:00:00", "2"),
		confirmed,
	)

	all, err := h.svc.ListAppointments(ctx, ListAppointmentsParams{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(all) != 3 || all[0].ID != "x3" || all[1].ID != "x2" || all[2].ID != "x1" {
		t.Fatalf("expected newest first, got %v", appointmentIDs(all))
	}

	bySearch, _ := h.svc.ListAppointments(ctx, ListAppointmentsParams{Filter: scheduler.RecordFilter{Search: "maría"}})
	if len(bySearch) != 2 {
		t.Fatalf("expected name search to match two, got %v", appointmentIDs(bySearch))
	}

	byRoom, _ := h.svc.ListAppointments(ctx, ListAppointmentsParams{Filter: scheduler.RecordFilter{RoomName: "Sala 2", Attendance: scheduler.AttendancePending}})
	if len(byRoom) != 1 || byRoom[0].ID != "x2" {
		t.Fatalf("unexpected room and attendance filter result %v", appointmentIDs(byRoom))
	}

	byDate, _ := h.svc.ListAppointments(ctx, ListAppointmentsParams{Date: "2025-07-17"})
	if len(byDate) != 2 {
		t.Fatalf("unexpected date filter result %v", appointmentIDs(byDate))
	}

	if _, err := h.svc.ListAppointments(ctx, ListAppointmentsParams{Date: "17/07/2025"}); err == nil {
		t.Fatalf("expected invalid date to be rejected")
	}

	names, _ := h.svc.RoomNames(ctx, ListAppointmentsParams{})
	if len(names) != 2 || names[0] != "Sala 2" || names[1] != "Sala 1" {
		t.Fatalf("unexpected room names %v", names)
	}

	days, err := h.svc.CalendarDays(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(days) != 2 || days[0].Count != 2 || days[1].Date.String() != "2025-07-18" {
		t.Fatalf("unexpected day counts %+v", days)
	}
}

func TestAppointmentService_Availability(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t,
		stored("x1", "c1", "2025-07-17", "09:00:00", "1"),
		stored("x2", "c1", "2025-07-17", "09:00:00", "2"),
		stored("x3", "c2", "2025-07-17", "09:00:00", "3"),
		stored("x4", "c2", "2025-07-17", "10:00:00", "2"),
	)

	slots, err := h.svc.AvailableTimeSlots(ctx, "2025-07-17")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 of 8 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		if slot.Short() == "09:00" {
			t.Fatalf("09:00 is fully booked and must not be offered")
		}
	}

	free, err := h.svc.AvailableRooms(ctx, "2025-07-17", "10:00")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(free.RoomIDs) != 2 || free.RoomIDs[0] != "1" || free.RoomIDs[1] != "3" {
		t.Fatalf("unexpected free rooms %v", free.RoomIDs)
	}

	if _, err := h.svc.AvailableRooms(ctx, "2025-07-17", "ten"); err == nil {
		t.Fatalf("expected invalid time to be rejected")
	}
}

func TestAppointmentService_SnapshotCache(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "09:00:00", "1"))

	if _, err := h.svc.AvailableTimeSlots(ctx, "2025-07-17"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := h.svc.AvailableTimeSlots(ctx, "2025-07-17"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if h.appointments.listCalls != 1 {
		t.Fatalf("expected second read to be served from cache, got %d list calls", h.appointments.listCalls)
	}

	if _, err := h.svc.CreateAppointments(ctx, CreateAppointmentsParams{Bookings: []AppointmentInput{
		{ClientID: "c1", Date: "2025-07-17", Time: "09:00", RoomID: "2"},
	}}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	free, err := h.svc.AvailableRooms(ctx, "2025-07-17", "09:00")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(free.RoomIDs) != 1 || free.RoomIDs[0] != "3" {
		t.Fatalf("expected writes to invalidate the snapshot, got %v", free.RoomIDs)
	}
}

func TestAppointmentService_CachedRowsPickUpRenames(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "09:00:00", "1"))

	before, err := h.svc.ListAppointments(ctx, ListAppointmentsParams{Date: "2025-07-17"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(before) != 1 || before[0].RoomName != "Sala 1" || before[0].ClientName != "María Pérez" {
		t.Fatalf("unexpected listing %+v", before)
	}

	rooms := NewRoomService(h.rooms, nil, func() time.Time { return serviceNow })
	if _, err := rooms.UpdateRoom(ctx, UpdateRoomParams{RoomID: "1", Input: RoomInput{Name: "Consultorio A"}}); err != nil {
		t.Fatalf("rename room: %v", err)
	}
	client := h.clients.clients["c1"]
	client.FullName = "María Pérez Mora"
	if _, err := h.clients.UpdateClient(ctx, client); err != nil {
		t.Fatalf("rename client: %v", err)
	}

	after, err := h.svc.ListAppointments(ctx, ListAppointmentsParams{Date: "2025-07-17"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if h.appointments.listCalls != 1 {
		t.Fatalf("expected rows to come from cache, got %d list calls", h.appointments.listCalls)
	}
	if after[0].RoomName != "Consultorio A" || after[0].ClientName != "María Pérez Mora" {
		t.Fatalf("expected current names, got room %q client %q", after[0].RoomName, after[0].ClientName)
	}
}

func TestAppointmentService_ExportCalendar(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t, stored("x1", "c1", "2025-07-17", "14:30:00", "1"))

	doc, err := h.svc.ExportCalendar(ctx, ListAppointmentsParams{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("export must be parseable: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if got := events[0].GetProperty(ical.ComponentPropertySummary).Value; got != "María Pérez" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := events[0].GetProperty(ical.ComponentPropertyLocation).Value; got != "Sala 1" {
		t.Fatalf("unexpected location %q", got)
	}
}
