package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/recurrence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

// AppointmentRepository captures the persistence interactions needed by the service.
type AppointmentRepository interface {
	CreateAppointments(ctx context.Context, appointments []Appointment) ([]Appointment, error)
	GetAppointment(ctx context.Context, id string) (Appointment, error)
	UpdateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	ListAppointments(ctx context.Context, filter AppointmentRepositoryFilter) ([]Appointment, error)
}

// RoomCatalog exposes the room lookups the booking flow needs.
type RoomCatalog interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// ClientDirectory exposes the client lookups the booking flow needs.
type ClientDirectory interface {
	GetClient(ctx context.Context, id string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
}

// AppointmentServiceDeps wires an AppointmentService.
type AppointmentServiceDeps struct {
	Appointments AppointmentRepository
	Rooms        RoomCatalog
	Clients      ClientDirectory
	Recurrence   *recurrence.Engine
	IDGenerator  func() string
	Now          func() time.Time
	// Location is the clinic time zone. It only decides what "now" is.
	Location     *time.Location
	MaxBatchSize int
	// SlotOptions bounds the day grid; RoomCount is filled from the room catalog.
	SlotOptions scheduler.SlotOptions
	SnapshotTTL time.Duration
	Export      calendar.ExportOptions
	Logger      *slog.Logger
}

// AppointmentService books, moves and reports appointments. Every write runs
// through the conflict engine against a fresh snapshot of the affected days;
// the storage uniqueness constraint backs it up against concurrent writers.
type AppointmentService struct {
	appointments AppointmentRepository
	rooms        RoomCatalog
	clients      ClientDirectory
	engine       *scheduler.Engine
	seriesEngine *scheduler.Engine
	recurrence   *recurrence.Engine
	idGenerator  func() string
	now          func() time.Time
	slotOptions  scheduler.SlotOptions
	export       calendar.ExportOptions
	cache        *snapshotCache
	logger       *slog.Logger
}

// NewAppointmentService wires dependencies for appointment operations.
func NewAppointmentService(deps AppointmentServiceDeps) *AppointmentService {
	if deps.IDGenerator == nil {
		deps.IDGenerator = func() string { return "" }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Recurrence == nil {
		deps.Recurrence = recurrence.NewEngine(0)
	}
	if deps.Export.Now == nil {
		deps.Export.Now = deps.Now
	}

	engineOpts := []scheduler.Option{scheduler.WithNow(deps.Now), scheduler.WithLocation(deps.Location)}
	engine := scheduler.NewEngine(append(engineOpts, scheduler.WithMaxBatchSize(deps.MaxBatchSize))...)
	seriesEngine := scheduler.NewEngine(append(engineOpts, scheduler.WithMaxBatchSize(deps.Recurrence.MaxOccurrences()))...)

	return &AppointmentService{
		appointments: deps.Appointments,
		rooms:        deps.Rooms,
		clients:      deps.Clients,
		engine:       engine,
		seriesEngine: seriesEngine,
		recurrence:   deps.Recurrence,
		idGenerator:  deps.IDGenerator,
		now:          deps.Now,
		slotOptions:  deps.SlotOptions,
		export:       deps.Export,
		cache:        newSnapshotCache(deps.SnapshotTTL, 0, deps.Now),
		logger:       defaultLogger(deps.Logger),
	}
}

func (s *AppointmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AppointmentService", operation, attrs...)
}

// CreateAppointments validates and commits a batch of bookings. Either every
// booking is stored or none is.
func (s *AppointmentService) CreateAppointments(ctx context.Context, params CreateAppointmentsParams) (created []Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if s.appointments == nil {
		err = fmt.Errorf("appointment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateAppointments", "batch_size", len(params.Bookings))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create appointments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointments created", "appointment_ids", appointmentIDs(created))
	}()

	if len(params.Bookings) == 0 || len(params.Bookings) > s.engine.MaxBatchSize() {
		vErr := &ValidationError{}
		vErr.add("bookings", fmt.Sprintf("between 1 and %d bookings are required", s.engine.MaxBatchSize()))
		err = vErr
		return
	}

	proposals := make([]scheduler.ProposedBooking, len(params.Bookings))
	vErr := &ValidationError{}
	for i, input := range params.Bookings {
		proposals[i] = s.validateBooking(batchField(i), input, vErr)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	created, err = s.commit(ctx, s.engine, params.Bookings, proposals, batchField)
	return
}

// CreateSeries expands a recurring booking and commits every occurrence as one batch.
func (s *AppointmentService) CreateSeries(ctx context.Context, params CreateSeriesParams) (created []Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if s.appointments == nil {
		err = fmt.Errorf("appointment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateSeries",
		"client_id", params.Booking.ClientID,
		"room_id", params.Booking.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create series", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "series created", "occurrences", len(created))
	}()

	vErr := &ValidationError{}
	first := s.validateBooking("booking", params.Booking, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var proposals []scheduler.ProposedBooking
	if strings.TrimSpace(params.Rule) != "" {
		proposals, err = s.recurrence.ExpandRule(first.At(), params.Rule, first.RoomID)
	} else {
		proposals, err = s.recurrence.Expand(first.At(), params.Series, first.RoomID)
	}
	if err != nil {
		err = mapRecurrenceError(err)
		return
	}
	if len(proposals) == 0 {
		vErr.add("series", "series produces no occurrences")
		err = vErr
		return
	}

	inputs := make([]AppointmentInput, len(proposals))
	for i := range proposals {
		inputs[i] = params.Booking
	}
	created, err = s.commit(ctx, s.seriesEngine, inputs, proposals, seriesField)
	return
}

// RescheduleAppointment moves an appointment to a new date and time, and
// optionally a new room. The new moment must be strictly in the future.
func (s *AppointmentService) RescheduleAppointment(ctx context.Context, params RescheduleParams) (appt Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if s.appointments == nil {
		err = fmt.Errorf("appointment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "RescheduleAppointment", "appointment_id", params.AppointmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment rescheduled", "date_time", appt.DateTime.String(), "room_id", appt.RoomID)
	}()

	var existing Appointment
	existing, err = s.appointments.GetAppointment(ctx, params.AppointmentID)
	if err != nil {
		err = mapAppointmentRepoError(err)
		return
	}

	roomID := strings.TrimSpace(params.RoomID)
	if roomID == "" {
		roomID = existing.RoomID
	}

	vErr := &ValidationError{}
	proposed, parseErr := scheduler.ParseProposedBooking(params.Date, params.Time, roomID)
	if parseErr != nil && !vErr.addScheduler("", parseErr) {
		err = parseErr
		return
	}
	var rooms map[string]Room
	rooms, err = s.roomIndex(ctx)
	if err != nil {
		return
	}
	if _, ok := rooms[roomID]; !ok {
		vErr.add("roomId", "room not found")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var snapshot []Appointment
	snapshot, err = s.snapshot(ctx, []scheduler.Date{proposed.Date})
	if err != nil {
		return
	}

	var conflict *scheduler.Conflict
	conflict, err = s.engine.CheckReschedule(engineViews(snapshot), existing.ID, proposed)
	if err != nil {
		err = mapSchedulerError(err)
		return
	}
	if conflict != nil {
		err = newConflictError(rooms, *conflict)
		return
	}

	updated := existing
	updated.DateTime = proposed.At()
	updated.RoomID = proposed.RoomID
	updated.UpdatedAt = s.now()

	appt, err = s.appointments.UpdateAppointment(ctx, updated)
	if err != nil {
		err = mapAppointmentRepoError(err)
		return
	}
	s.cache.Invalidate()
	appt, err = s.enrichOne(ctx, appt)
	return
}

// UpdateAttendance records whether the patient attended.
func (s *AppointmentService) UpdateAttendance(ctx context.Context, params UpdateAttendanceParams) (Appointment, error) {
	status, parseErr := scheduler.ParseAttendanceStatus(params.Status)
	return s.mutate(ctx, "UpdateAttendance", params.AppointmentID, func(appt *Appointment) *ValidationError {
		if parseErr != nil {
			vErr := &ValidationError{}
			vErr.addScheduler("", parseErr)
			return vErr
		}
		appt.AttendanceStatus = status
		return nil
	})
}

// UpdateComments replaces the free-text comments of an appointment.
func (s *AppointmentService) UpdateComments(ctx context.Context, params UpdateCommentsParams) (Appointment, error) {
	return s.mutate(ctx, "UpdateComments", params.AppointmentID, func(appt *Appointment) *ValidationError {
		appt.Comments = strings.TrimSpace(params.Comments)
		return nil
	})
}

// DeleteAppointment cancels an appointment.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, appointmentID string) error {
	if s == nil {
		return fmt.Errorf("AppointmentService is nil")
	}
	if s.appointments == nil {
		return fmt.Errorf("appointment repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteAppointment", "appointment_id", appointmentID)
	if err := s.appointments.DeleteAppointment(ctx, appointmentID); err != nil {
		err = mapAppointmentRepoError(err)
		logger.ErrorContext(ctx, "failed to delete appointment", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	s.cache.Invalidate()
	logger.InfoContext(ctx, "appointment deleted")
	return nil
}

// GetAppointment returns one appointment with its room and client names resolved.
func (s *AppointmentService) GetAppointment(ctx context.Context, appointmentID string) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("AppointmentService is nil")
	}
	if s.appointments == nil {
		return Appointment{}, ErrNotFound
	}
	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}
	return s.enrichOne(ctx, appt)
}

// ListAppointments returns the matching appointments, newest first.
func (s *AppointmentService) ListAppointments(ctx context.Context, params ListAppointmentsParams) (appts []Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if s.appointments == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListAppointments", "date", params.Date, "room_id", params.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list appointments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(appts)).DebugContext(ctx, "appointments listed")
	}()

	filter := AppointmentRepositoryFilter{RoomID: strings.TrimSpace(params.RoomID), ClientID: strings.TrimSpace(params.ClientID)}
	if strings.TrimSpace(params.Date) != "" {
		date, parseErr := scheduler.ParseDate(params.Date)
		if parseErr != nil {
			vErr := &ValidationError{}
			vErr.addScheduler("", parseErr)
			err = vErr
			return
		}
		filter.Date = &date
	}
	if params.Filter.Attendance != "" && !params.Filter.Attendance.Valid() {
		vErr := &ValidationError{}
		vErr.add("attendanceStatus", "unknown attendance status")
		err = vErr
		return
	}

	var raw []Appointment
	raw, err = s.load(ctx, filter)
	if err != nil {
		return
	}

	byID := make(map[string]Appointment, len(raw))
	for _, appt := range raw {
		byID[appt.ID] = appt
	}
	views := scheduler.SortNewestFirst(scheduler.FilterAppointments(engineViews(raw), params.Filter))
	appts = make([]Appointment, len(views))
	for i, view := range views {
		appts[i] = byID[view.ID]
	}
	return
}

// RoomNames lists the distinct room names among the matching appointments, in
// listing order, for building a room filter.
func (s *AppointmentService) RoomNames(ctx context.Context, params ListAppointmentsParams) ([]string, error) {
	appts, err := s.ListAppointments(ctx, params)
	if err != nil {
		return nil, err
	}
	return scheduler.RoomNames(engineViews(appts)), nil
}

// AvailableTimeSlots lists the start times on date at which at least one room is free.
func (s *AppointmentService) AvailableTimeSlots(ctx context.Context, date string) ([]scheduler.TimeOfDay, error) {
	if s == nil {
		return nil, fmt.Errorf("AppointmentService is nil")
	}
	day, err := scheduler.ParseDate(date)
	if err != nil {
		return nil, mapSchedulerError(err)
	}

	rooms, err := s.roomIndex(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx, []scheduler.Date{day})
	if err != nil {
		return nil, err
	}

	opts := s.slotOptions
	opts.RoomCount = len(rooms)
	seq, err := s.engine.AvailableTimeSlots(engineViews(snapshot), day, opts)
	if err != nil {
		return nil, mapSchedulerError(err)
	}
	return slices.Collect(seq), nil
}

// AvailableRooms lists the rooms free at the given date and time, in catalog order.
func (s *AppointmentService) AvailableRooms(ctx context.Context, date, timeOfDay string) (RoomAvailability, error) {
	if s == nil {
		return RoomAvailability{}, fmt.Errorf("AppointmentService is nil")
	}
	vErr := &ValidationError{}
	day, dErr := scheduler.ParseDate(date)
	vErr.addScheduler("", dErr)
	at, tErr := scheduler.ParseTimeOfDay(timeOfDay)
	vErr.addScheduler("", tErr)
	if vErr.HasErrors() {
		return RoomAvailability{}, vErr
	}

	catalog, err := s.listRooms(ctx)
	if err != nil {
		return RoomAvailability{}, err
	}
	snapshot, err := s.snapshot(ctx, []scheduler.Date{day})
	if err != nil {
		return RoomAvailability{}, err
	}

	all := make([]scheduler.Room, len(catalog))
	for i, room := range catalog {
		all[i] = scheduler.Room{ID: room.ID, Name: room.Name}
	}
	free, err := s.engine.AvailableRooms(engineViews(snapshot), day, at, all)
	if err != nil {
		return RoomAvailability{}, err
	}
	return RoomAvailability{Date: day, Time: at, RoomIDs: free}, nil
}

// CalendarDays returns the number of appointments per booked day.
func (s *AppointmentService) CalendarDays(ctx context.Context) ([]scheduler.DayCount, error) {
	if s == nil {
		return nil, fmt.Errorf("AppointmentService is nil")
	}
	if s.appointments == nil {
		return nil, nil
	}
	all, err := s.load(ctx, AppointmentRepositoryFilter{})
	if err != nil {
		return nil, err
	}
	return scheduler.CountByDate(engineViews(all)), nil
}

// ExportCalendar renders the matching appointments as an iCalendar document.
func (s *AppointmentService) ExportCalendar(ctx context.Context, params ListAppointmentsParams) (string, error) {
	appts, err := s.ListAppointments(ctx, params)
	if err != nil {
		return "", err
	}
	return calendar.Export(engineViews(appts), s.export)
}

// validateBooking checks one input and returns its proposed slot. Problems are
// recorded in vErr under prefix.
func (s *AppointmentService) validateBooking(prefix string, input AppointmentInput, vErr *ValidationError) scheduler.ProposedBooking {
	if strings.TrimSpace(input.ClientID) == "" {
		vErr.add(prefix+".clientId", "client is required")
	}
	proposed, err := scheduler.ParseProposedBooking(input.Date, input.Time, input.RoomID)
	if err != nil {
		if !vErr.addScheduler(prefix, err) {
			vErr.add(prefix, err.Error())
		}
	}
	return proposed
}

// batchField and seriesField name the input a proposal came from in field errors.
func batchField(i int) string { return fmt.Sprintf("bookings[%d]", i) }

func seriesField(int) string { return "booking" }

// commit checks proposals with engine and stores them. inputs[i] holds the
// non-slot fields of proposals[i], and field(i) its key in validation errors.
func (s *AppointmentService) commit(ctx context.Context, engine *scheduler.Engine, inputs []AppointmentInput, proposals []scheduler.ProposedBooking, field func(int) string) ([]Appointment, error) {
	rooms, err := s.roomIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, rooms, inputs, proposals, field); err != nil {
		return nil, err
	}

	days := make([]scheduler.Date, 0, len(proposals))
	for _, p := range proposals {
		if !slices.Contains(days, p.Date) {
			days = append(days, p.Date)
		}
	}
	snapshot, err := s.snapshot(ctx, days)
	if err != nil {
		return nil, err
	}

	conflicts, err := engine.CheckBatch(engineViews(snapshot), proposals)
	if err != nil {
		return nil, mapSchedulerError(err)
	}
	if len(conflicts) > 0 {
		return nil, newConflictError(rooms, conflicts...)
	}

	now := s.now()
	pending := make([]Appointment, len(proposals))
	for i, p := range proposals {
		pending[i] = Appointment{
			ID:               s.idGenerator(),
			ClientID:         strings.TrimSpace(inputs[i].ClientID),
			DateTime:         p.At(),
			RoomID:           p.RoomID,
			AttendanceStatus: scheduler.AttendancePending,
			Comments:         strings.TrimSpace(inputs[i].Comments),
			IsShared:         inputs[i].IsShared,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	stored, err := s.appointments.CreateAppointments(ctx, pending)
	if err != nil {
		return nil, mapAppointmentRepoError(err)
	}
	s.cache.Invalidate()
	return s.enrich(ctx, stored)
}

func (s *AppointmentService) ensureReferences(ctx context.Context, rooms map[string]Room, inputs []AppointmentInput, proposals []scheduler.ProposedBooking, field func(int) string) error {
	vErr := &ValidationError{}
	known := make(map[string]bool)
	for i, p := range proposals {
		if _, ok := rooms[p.RoomID]; !ok {
			vErr.add(field(i)+".roomId", "room not found")
		}
		clientID := strings.TrimSpace(inputs[i].ClientID)
		exists, checked := known[clientID]
		if !checked && s.clients != nil {
			_, err := s.clients.GetClient(ctx, clientID)
			switch {
			case err == nil:
				exists = true
			case errors.Is(mapClientRepoError(err), ErrNotFound):
				exists = false
			default:
				return err
			}
			known[clientID] = exists
		} else if !checked {
			exists = true
		}
		if !exists {
			vErr.add(field(i)+".clientId", "client not found")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func (s *AppointmentService) mutate(ctx context.Context, operation, appointmentID string, apply func(*Appointment) *ValidationError) (appt Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if s.appointments == nil {
		err = fmt.Errorf("appointment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation, "appointment_id", appointmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment updated")
	}()

	var existing Appointment
	existing, err = s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		err = mapAppointmentRepoError(err)
		return
	}

	updated := existing
	if vErr := apply(&updated); vErr.HasErrors() {
		err = vErr
		return
	}
	updated.UpdatedAt = s.now()

	appt, err = s.appointments.UpdateAppointment(ctx, updated)
	if err != nil {
		err = mapAppointmentRepoError(err)
		return
	}
	s.cache.Invalidate()
	appt, err = s.enrichOne(ctx, appt)
	return
}

// snapshot returns the enriched appointments booked on any of days.
func (s *AppointmentService) snapshot(ctx context.Context, days []scheduler.Date) ([]Appointment, error) {
	var out []Appointment
	for _, day := range days {
		appts, err := s.load(ctx, AppointmentRepositoryFilter{Date: &day})
		if err != nil {
			return nil, err
		}
		out = append(out, appts...)
	}
	return out, nil
}

func (s *AppointmentService) load(ctx context.Context, filter AppointmentRepositoryFilter) ([]Appointment, error) {
	key := snapshotKey(filter)
	raw, ok := s.cache.Get(key)
	if !ok {
		var err error
		raw, err = s.appointments.ListAppointments(ctx, filter)
		if err != nil {
			return nil, mapAppointmentRepoError(err)
		}
		s.cache.Store(key, raw)
	}
	// Names are resolved on every read so room and client edits show at once.
	return s.enrich(ctx, raw)
}

func (s *AppointmentService) enrich(ctx context.Context, appts []Appointment) ([]Appointment, error) {
	if len(appts) == 0 {
		return appts, nil
	}
	rooms, err := s.roomIndex(ctx)
	if err != nil {
		return nil, err
	}
	clients := make(map[string]Client)
	if s.clients != nil {
		list, err := s.clients.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		for _, client := range list {
			clients[client.ID] = client
		}
	}

	out := make([]Appointment, len(appts))
	for i, appt := range appts {
		if room, ok := rooms[appt.RoomID]; ok {
			appt.RoomName = room.Name
		}
		if client, ok := clients[appt.ClientID]; ok {
			appt.ClientName = client.FullName
			appt.ClientIDNumber = client.IDNumber
		}
		out[i] = appt
	}
	return out, nil
}

func (s *AppointmentService) enrichOne(ctx context.Context, appt Appointment) (Appointment, error) {
	out, err := s.enrich(ctx, []Appointment{appt})
	if err != nil {
		return Appointment{}, err
	}
	return out[0], nil
}

func (s *AppointmentService) listRooms(ctx context.Context) ([]Room, error) {
	if s.rooms == nil {
		return nil, nil
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRoomRepoError(err)
	}
	sortRooms(rooms)
	return rooms, nil
}

func (s *AppointmentService) roomIndex(ctx context.Context) (map[string]Room, error) {
	rooms, err := s.listRooms(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]Room, len(rooms))
	for _, room := range rooms {
		index[room.ID] = room
	}
	return index, nil
}

func engineViews(appts []Appointment) []scheduler.Appointment {
	out := make([]scheduler.Appointment, len(appts))
	for i, appt := range appts {
		out[i] = appt.Engine()
	}
	return out
}

func appointmentIDs(appts []Appointment) []string {
	ids := make([]string, len(appts))
	for i, appt := range appts {
		ids[i] = appt.ID
	}
	return ids
}

// newConflictError fills in room names the snapshot could not provide.
func newConflictError(rooms map[string]Room, conflicts ...scheduler.Conflict) *ConflictError {
	out := make([]scheduler.Conflict, len(conflicts))
	for i, c := range conflicts {
		if c.RoomName == "" {
			c.RoomName = rooms[c.RoomID].Name
		}
		out[i] = c
	}
	return &ConflictError{Conflicts: out}
}

func mapSchedulerError(err error) error {
	if err == nil {
		return nil
	}
	var sErr *scheduler.ValidationError
	if !errors.As(err, &sErr) {
		return err
	}
	vErr := &ValidationError{}
	field := sErr.Field
	switch {
	case field == "batch":
		field = "bookings"
	case strings.HasPrefix(field, "batch["):
		field = "bookings" + strings.TrimPrefix(field, "batch")
	}
	vErr.add(field, sErr.Reason)
	return vErr
}

func mapRecurrenceError(err error) error {
	switch {
	case errors.Is(err, recurrence.ErrInvalidFrequency),
		errors.Is(err, recurrence.ErrInvalidWindow),
		errors.Is(err, recurrence.ErrInvalidInterval),
		errors.Is(err, recurrence.ErrTooManyOccurrences):
		vErr := &ValidationError{}
		vErr.add("series", err.Error())
		return vErr
	}
	if errors.Is(err, recurrence.ErrInvalidRule) {
		vErr := &ValidationError{}
		vErr.add("rule", err.Error())
		return vErr
	}
	return err
}

func mapAppointmentRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, ErrSlotTaken) || errors.Is(err, persistence.ErrDuplicate) {
		return ErrSlotTaken
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("bookings", "room or client no longer exists")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("appointment", "appointment violates a storage constraint")
		return vErr
	}
	return err
}
