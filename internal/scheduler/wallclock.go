package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day without any time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeOfDay is a local time-of-day with second precision and no zone.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// WallClock is a literal local date and time. It is never converted between zones.
type WallClock struct {
	Date Date
	Time TimeOfDay
}

// NewDate builds a Date, rejecting impossible days such as February 30.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December || day < 1 {
		return Date{}, newValidationError("date", fmt.Sprintf("%04d-%02d-%02d", year, month, day), "not a calendar day")
	}
	civil := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if civil.Day() != day || civil.Month() != month {
		return Date{}, newValidationError("date", fmt.Sprintf("%04d-%02d-%02d", year, month, day), "not a calendar day")
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// MustDate is NewDate for literals known to be valid.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// NewTimeOfDay builds a TimeOfDay within 00:00:00..23:59:59.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}, newValidationError("time", fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), "out of range")
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, nil
}

// MustTime is NewTimeOfDay for literals known to be valid.
func MustTime(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute, 0)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Date{}, newValidationError("date", value, "expected YYYY-MM-DD")
	}
	for _, part := range parts {
		if !allDigits(part) {
			return Date{}, newValidationError("date", value, "expected YYYY-MM-DD")
		}
	}
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])
	d, err := NewDate(year, time.Month(month), day)
	if err != nil {
		return Date{}, newValidationError("date", value, "not a calendar day")
	}
	return d, nil
}

// ParseTimeOfDay parses HH:mm or HH:mm:ss. Fractional seconds and a trailing zone
// designator (Z, +hh:mm, -hhmm) are stripped and ignored, never applied. Any
// other suffix is rejected.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	core, ok := stripZone(strings.TrimSpace(value))
	if !ok {
		return TimeOfDay{}, newValidationError("time", value, "invalid zone designator")
	}
	if idx := strings.IndexByte(core, '.'); idx >= 0 {
		frac := core[idx+1:]
		if frac == "" || !allDigits(frac) {
			return TimeOfDay{}, newValidationError("time", value, "expected HH:mm or HH:mm:ss")
		}
		core = core[:idx]
	}

	parts := strings.Split(core, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, newValidationError("time", value, "expected HH:mm or HH:mm:ss")
	}
	fields := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 || !allDigits(part) {
			return TimeOfDay{}, newValidationError("time", value, "expected HH:mm or HH:mm:ss")
		}
		fields[i], _ = strconv.Atoi(part)
	}
	t, err := NewTimeOfDay(fields[0], fields[1], fields[2])
	if err != nil {
		return TimeOfDay{}, newValidationError("time", value, "out of range")
	}
	return t, nil
}

// ParseWallClock parses YYYY-MM-DDTHH:mm[:ss][.fff][zone]. A single space is accepted
// in place of the T separator. Any zone suffix is discarded.
func ParseWallClock(value string) (WallClock, error) {
	trimmed := strings.TrimSpace(value)
	sep := strings.IndexAny(trimmed, "T ")
	if sep < 0 {
		return WallClock{}, newValidationError("dateTime", value, "expected YYYY-MM-DDTHH:mm:ss")
	}
	d, err := ParseDate(trimmed[:sep])
	if err != nil {
		return WallClock{}, newValidationError("dateTime", value, "invalid date part")
	}
	t, err := ParseTimeOfDay(trimmed[sep+1:])
	if err != nil {
		return WallClock{}, newValidationError("dateTime", value, "invalid time part")
	}
	return WallClock{Date: d, Time: t}, nil
}

// WallClockOf reads the wall-clock fields of t in its own location.
func WallClockOf(t time.Time) WallClock {
	y, m, d := t.Date()
	return WallClock{
		Date: Date{Year: y, Month: m, Day: d},
		Time: TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()},
	}
}

// At combines a date and a time-of-day.
func (d Date) At(t TimeOfDay) WallClock {
	return WallClock{Date: d, Time: t}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.civil().Weekday()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return WallClockOf(d.civil().AddDate(0, 0, n)).Date
}

// Long formats the date as "Thursday, July 17, 2025".
func (d Date) Long() string {
	return d.civil().Format("Monday, January 2, 2006")
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// civil anchors the date in UTC purely to reuse calendar arithmetic.
func (d Date) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the time as HH:mm:ss.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Short formats the time as HH:mm.
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Clock12 formats the time as "2:30 PM".
func (t TimeOfDay) Clock12() string {
	suffix := "AM"
	hour := t.Hour
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, suffix)
}

// SecondsOfDay returns the number of seconds since midnight.
func (t TimeOfDay) SecondsOfDay() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Compare returns -1, 0 or +1.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	return cmpInt(t.SecondsOfDay(), other.SecondsOfDay())
}

// String formats the wall clock as YYYY-MM-DDTHH:mm:ss.
func (w WallClock) String() string {
	return w.Date.String() + "T" + w.Time.String()
}

// Compare orders wall clocks structurally by date then time.
func (w WallClock) Compare(other WallClock) int {
	if c := w.Date.Compare(other.Date); c != 0 {
		return c
	}
	return w.Time.Compare(other.Time)
}

// Before reports whether w is strictly earlier than other.
func (w WallClock) Before(other WallClock) bool { return w.Compare(other) < 0 }

// After reports whether w is strictly later than other.
func (w WallClock) After(other WallClock) bool { return w.Compare(other) > 0 }

// Equal reports whether both wall clocks denote the same literal moment.
func (w WallClock) Equal(other WallClock) bool { return w.Compare(other) == 0 }

// In materialises the wall clock in loc. Only callers that explicitly want an
// instant (e.g. exporters) use this; comparisons never do.
func (w WallClock) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(w.Date.Year, w.Date.Month, w.Date.Day, w.Time.Hour, w.Time.Minute, w.Time.Second, 0, loc)
}

// stripZone removes a trailing Z, ±hh:mm or ±hhmm designator. It reports false
// when a sign follows the hour field but what comes after is not an offset.
func stripZone(value string) (string, bool) {
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		return value[:len(value)-1], true
	}
	// Offsets only ever follow the hour field.
	colon := strings.IndexByte(value, ':')
	if colon < 0 {
		return value, true
	}
	idx := strings.IndexAny(value[colon:], "+-")
	if idx < 0 {
		return value, true
	}
	cut := colon + idx
	if !validOffset(value[cut+1:]) {
		return "", false
	}
	return value[:cut], true
}

func validOffset(offset string) bool {
	var hh, mm string
	switch {
	case len(offset) == 5 && offset[2] == ':':
		hh, mm = offset[:2], offset[3:]
	case len(offset) == 4:
		hh, mm = offset[:2], offset[2:]
	default:
		return false
	}
	if !allDigits(hh) || !allDigits(mm) {
		return false
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h <= 23 && m <= 59
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
