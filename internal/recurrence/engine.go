package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/clinic-scheduler/internal/scheduler"
)

// DefaultMaxOccurrences caps a single series expansion.
const DefaultMaxOccurrences = 52

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the rule frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily repeats every Interval days.
	FrequencyDaily
	// FrequencyWeekly repeats every Interval weeks on the selected weekdays.
	FrequencyWeekly
)

// ParseFrequency accepts "daily" or "weekly".
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	default:
		return FrequencyUnspecified, fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
	}
}

func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	default:
		return "unspecified"
	}
}

// Series describes a recurring booking request such as "every Monday and Thursday,
// five times". Until is inclusive.
type Series struct {
	Frequency Frequency
	Interval  int
	Count     int
	Until     *scheduler.Date
	Weekdays  []time.Weekday
	Except    []scheduler.Date
}

var (
	// ErrInvalidFrequency indicates the recurrence frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	// ErrInvalidWindow indicates the series has neither a count nor an end date.
	ErrInvalidWindow = errors.New("recurrence: series requires a count or an end date")
	// ErrInvalidInterval indicates a negative interval.
	ErrInvalidInterval = errors.New("recurrence: interval must be positive")
	// ErrTooManyOccurrences indicates the expansion exceeds the configured cap.
	ErrTooManyOccurrences = errors.New("recurrence: too many occurrences")
	// ErrInvalidRule indicates an RRULE string that cannot be parsed.
	ErrInvalidRule = errors.New("recurrence: parse rule")
)

// Engine expands recurring series into booking batches.
type Engine struct {
	maxOccurrences int
}

// NewEngine constructs an Engine. A non-positive cap selects DefaultMaxOccurrences.
func NewEngine(maxOccurrences int) *Engine {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	return &Engine{maxOccurrences: maxOccurrences}
}

// MaxOccurrences reports the expansion cap.
func (e *Engine) MaxOccurrences() int {
	return e.maxOccurrences
}

// Expand produces one booking per occurrence of series, starting at start, all in
// roomID. Occurrences keep the hour and minute of start exactly.
func (e *Engine) Expand(start scheduler.WallClock, series Series, roomID string) ([]scheduler.ProposedBooking, error) {
	opt, err := e.options(start, series)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("recurrence: build rule: %w", err)
	}
	return e.collect(r, start.Time, series.Except, roomID)
}

// ExpandRule expands an RFC 5545 RRULE value (for example
// "FREQ=WEEKLY;BYDAY=MO,TH;COUNT=5") anchored at start.
func (e *Engine) ExpandRule(start scheduler.WallClock, value string, roomID string) ([]scheduler.ProposedBooking, error) {
	r, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(value), "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	switch r.OrigOptions.Freq {
	case rrule.DAILY, rrule.WEEKLY:
	default:
		return nil, ErrInvalidFrequency
	}
	if r.OrigOptions.Count == 0 && r.OrigOptions.Until.IsZero() {
		return nil, ErrInvalidWindow
	}
	if r.OrigOptions.Count > e.maxOccurrences {
		return nil, fmt.Errorf("%w: %d requested, at most %d", ErrTooManyOccurrences, r.OrigOptions.Count, e.maxOccurrences)
	}
	r.DTStart(frame(start))
	return e.collect(r, start.Time, nil, roomID)
}

func (e *Engine) options(start scheduler.WallClock, series Series) (rrule.ROption, error) {
	var freq rrule.Frequency
	switch series.Frequency {
	case FrequencyDaily:
		freq = rrule.DAILY
	case FrequencyWeekly:
		freq = rrule.WEEKLY
	default:
		return rrule.ROption{}, ErrInvalidFrequency
	}
	if series.Interval < 0 {
		return rrule.ROption{}, ErrInvalidInterval
	}
	if series.Count <= 0 && series.Until == nil {
		return rrule.ROption{}, ErrInvalidWindow
	}
	if series.Count > e.maxOccurrences {
		return rrule.ROption{}, fmt.Errorf("%w: %d requested, at most %d", ErrTooManyOccurrences, series.Count, e.maxOccurrences)
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: max(series.Interval, 1),
		Count:    max(series.Count, 0),
		Dtstart:  frame(start),
	}
	if series.Until != nil {
		opt.Until = frame(series.Until.At(scheduler.TimeOfDay{Hour: 23, Minute: 59, Second: 59}))
	}
	for _, day := range series.Weekdays {
		opt.Byweekday = append(opt.Byweekday, weekday(day))
	}
	return opt, nil
}

// collect stops after maxOccurrences+1 values.
func (e *Engine) collect(r *rrule.RRule, at scheduler.TimeOfDay, except []scheduler.Date, roomID string) ([]scheduler.ProposedBooking, error) {
	var set rrule.Set
	set.RRule(r)
	for _, d := range except {
		set.ExDate(frame(d.At(at)))
	}

	next := set.Iterator()
	bookings := make([]scheduler.ProposedBooking, 0)
	for occ, ok := next(); ok; occ, ok = next() {
		if len(bookings) == e.maxOccurrences {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyOccurrences, e.maxOccurrences)
		}
		w := scheduler.WallClockOf(occ.In(time.UTC))
		bookings = append(bookings, scheduler.ProposedBooking{Date: w.Date, Time: w.Time, RoomID: roomID})
	}
	return bookings, nil
}

// frame pins a wall clock to UTC so no daylight saving rule can move its fields.
func frame(w scheduler.WallClock) time.Time {
	return w.In(time.UTC)
}

func weekday(day time.Weekday) rrule.Weekday {
	switch day {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
