package scheduler

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// DefaultMaxBatchSize bounds how many bookings a single batch may carry.
const DefaultMaxBatchSize = 10

// Engine validates proposed bookings against a snapshot of existing appointments.
// It is safe for concurrent use; it holds nothing but its options.
type Engine struct {
	now      func() time.Time
	location *time.Location
	maxBatch int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow injects the clock used for past-date rejection.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone in which "now" is read as a wall clock.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithMaxBatchSize overrides DefaultMaxBatchSize.
func WithMaxBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxBatch = n
		}
	}
}

// NewEngine constructs an Engine with defaults: wall-clock now, the local zone and
// DefaultMaxBatchSize.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		location: time.Local,
		maxBatch: DefaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxBatchSize reports the configured batch limit.
func (e *Engine) MaxBatchSize() int {
	return e.maxBatch
}

// Now returns the current moment as a wall clock in the engine's zone, truncated to
// the second.
func (e *Engine) Now() WallClock {
	return WallClockOf(e.now().In(e.location).Truncate(time.Second))
}

// IsSlotOccupied reports whether an existing appointment holds the proposed slot.
func (e *Engine) IsSlotOccupied(existing []Appointment, proposed ProposedBooking) (bool, error) {
	if err := proposed.validate(); err != nil {
		return false, err
	}
	return occupant(existing, slotOf(proposed), "") >= 0, nil
}

// CheckReschedule validates moving appointmentID to proposed. The appointment itself
// is ignored when looking for occupants. A proposed moment at or before now is always
// rejected, whatever the room availability.
func (e *Engine) CheckReschedule(existing []Appointment, appointmentID string, proposed ProposedBooking) (*Conflict, error) {
	if appointmentID == "" {
		return nil, newValidationError("appointmentId", "", "appointment id is required")
	}
	if err := proposed.validate(); err != nil {
		return nil, err
	}

	target := slotOf(proposed)
	if e.isPast(target.at) {
		c := pastConflict(existing, target, -1)
		return &c, nil
	}
	if idx := occupant(existing, target, appointmentID); idx >= 0 {
		c := occupiedConflict(existing[idx], -1)
		return &c, nil
	}
	return nil, nil
}

// CheckBatch validates bookings created together. Bookings are examined in index
// order; each is checked against existing appointments, then against every other
// entry of the batch, then against the current moment. The first conflict found is
// returned and checking stops.
func (e *Engine) CheckBatch(existing []Appointment, batch []ProposedBooking) ([]Conflict, error) {
	if len(batch) < 1 || len(batch) > e.maxBatch {
		return nil, newValidationError("batch", fmt.Sprint(len(batch)), fmt.Sprintf("batch size must be between 1 and %d", e.maxBatch))
	}
	slots := make([]slot, len(batch))
	for i, b := range batch {
		if err := b.validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, newValidationError(fmt.Sprintf("batch[%d].%s", i, ve.Field), ve.Value, ve.Reason)
			}
			return nil, err
		}
		slots[i] = slotOf(b)
	}

	for i, s := range slots {
		if idx := occupant(existing, s, ""); idx >= 0 {
			return []Conflict{occupiedConflict(existing[idx], i)}, nil
		}
		for j, other := range slots {
			if i != j && sameSlot(s, other) {
				return []Conflict{{
					Kind:       ConflictBatch,
					BatchIndex: i,
					OtherIndex: j,
					RoomID:     s.roomID,
					RoomName:   roomName(existing, s.roomID),
					At:         s.at,
				}}, nil
			}
		}
		if e.isPast(s.at) {
			return []Conflict{pastConflict(existing, s, i)}, nil
		}
	}
	return nil, nil
}

// SlotOptions controls availableTimeSlots enumeration over [StartHour, EndHour).
type SlotOptions struct {
	SlotMinutes int
	StartHour   int
	EndHour     int
	RoomCount   int
}

// DefaultSlotOptions returns 30-minute slots between 08:00 and 18:00.
func DefaultSlotOptions(roomCount int) SlotOptions {
	return SlotOptions{SlotMinutes: 30, StartHour: 8, EndHour: 18, RoomCount: roomCount}
}

func (o SlotOptions) withDefaults() SlotOptions {
	if o.SlotMinutes == 0 {
		o.SlotMinutes = 30
	}
	if o.StartHour == 0 && o.EndHour == 0 {
		o.StartHour, o.EndHour = 8, 18
	}
	return o
}

func (o SlotOptions) validate() error {
	switch {
	case o.SlotMinutes < 1 || o.SlotMinutes > 24*60:
		return newValidationError("slotMinutes", fmt.Sprint(o.SlotMinutes), "must be between 1 and 1440")
	case o.StartHour < 0 || o.StartHour > 23:
		return newValidationError("startHour", fmt.Sprint(o.StartHour), "must be between 0 and 23")
	case o.EndHour <= o.StartHour || o.EndHour > 24:
		return newValidationError("endHour", fmt.Sprint(o.EndHour), "must be after startHour and at most 24")
	case o.RoomCount < 0:
		return newValidationError("roomCount", fmt.Sprint(o.RoomCount), "must not be negative")
	}
	return nil
}

// AvailableTimeSlots enumerates the times of day on date at which fewer than
// RoomCount appointments exist. The sequence is ascending and may be ranged over
// any number of times.
func (e *Engine) AvailableTimeSlots(existing []Appointment, date Date, opts SlotOptions) (iter.Seq[TimeOfDay], error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if _, err := NewDate(date.Year, date.Month, date.Day); err != nil {
		return nil, err
	}

	var sameDay []slot
	for _, a := range existing {
		if a.DateTime.Date == date {
			sameDay = append(sameDay, slotOf(BookingFrom(a)))
		}
	}

	start := opts.StartHour * 60
	end := opts.EndHour * 60
	return func(yield func(TimeOfDay) bool) {
		for minute := start; minute < end; minute += opts.SlotMinutes {
			tod := TimeOfDay{Hour: minute / 60, Minute: minute % 60}
			target := slot{at: date.At(tod)}
			occupied := 0
			for _, s := range sameDay {
				if s.sameMoment(target) {
					occupied++
				}
			}
			if occupied < opts.RoomCount && !yield(tod) {
				return
			}
		}
	}, nil
}

// AvailableRooms returns the ids of allRooms not booked at date and t, in input order.
func (e *Engine) AvailableRooms(existing []Appointment, date Date, t TimeOfDay, allRooms []Room) ([]string, error) {
	if _, err := NewDate(date.Year, date.Month, date.Day); err != nil {
		return nil, err
	}
	if _, err := NewTimeOfDay(t.Hour, t.Minute, t.Second); err != nil {
		return nil, err
	}
	free := make([]string, 0, len(allRooms))
	for _, room := range allRooms {
		target := slot{at: date.At(t), roomID: room.ID}
		if occupant(existing, target, "") < 0 {
			free = append(free, room.ID)
		}
	}
	return free, nil
}

func (e *Engine) isPast(at WallClock) bool {
	return !at.After(e.Now())
}

// slot is a normalized (moment, room) pair. TimeOfDay carries no sub-second or zone
// information, so structural equality is wall-clock equality.
type slot struct {
	at     WallClock
	roomID string
}

func slotOf(b ProposedBooking) slot {
	return slot{at: b.At(), roomID: b.RoomID}
}

func (s slot) sameMoment(other slot) bool {
	return s.at.Equal(other.at)
}

func sameSlot(a, b slot) bool {
	return a.sameMoment(b) && a.roomID == b.roomID
}

// occupant returns the index of the first appointment holding target, skipping
// excludeID, or -1.
func occupant(existing []Appointment, target slot, excludeID string) int {
	for i, a := range existing {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if sameSlot(slotOf(BookingFrom(a)), target) {
			return i
		}
	}
	return -1
}

func roomName(existing []Appointment, roomID string) string {
	for _, a := range existing {
		if a.Room.ID == roomID && a.Room.Name != "" {
			return a.Room.Name
		}
	}
	return ""
}

func occupiedConflict(a Appointment, batchIndex int) Conflict {
	return Conflict{
		Kind:          ConflictOccupied,
		BatchIndex:    batchIndex,
		OtherIndex:    -1,
		AppointmentID: a.ID,
		RoomID:        a.Room.ID,
		RoomName:      a.Room.Name,
		At:            a.DateTime,
	}
}

func pastConflict(existing []Appointment, s slot, batchIndex int) Conflict {
	return Conflict{
		Kind:       ConflictPast,
		BatchIndex: batchIndex,
		OtherIndex: -1,
		RoomID:     s.roomID,
		RoomName:   roomName(existing, s.roomID),
		At:         s.at,
	}
}
