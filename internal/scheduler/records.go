package scheduler

import (
	"slices"
	"strings"
)

// RecordFilter narrows an appointment listing. Empty fields match everything.
type RecordFilter struct {
	// Search matches a client id number substring or a case-insensitive name substring.
	Search     string
	RoomName   string
	Attendance AttendanceStatus
}

// FilterAppointments returns the appointments matching filter, preserving input order.
func FilterAppointments(appts []Appointment, filter RecordFilter) []Appointment {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if search != "" &&
			!strings.Contains(a.ClientIDNumber, search) &&
			!strings.Contains(strings.ToLower(a.ClientName), search) {
			continue
		}
		if filter.RoomName != "" && a.Room.Name != filter.RoomName {
			continue
		}
		if filter.Attendance != "" && a.AttendanceStatus != filter.Attendance {
			continue
		}
		out = append(out, a)
	}
	return out
}

// RoomNames lists distinct room names in first-seen order.
func RoomNames(appts []Appointment) []string {
	seen := make(map[string]struct{}, len(appts))
	var names []string
	for _, a := range appts {
		if a.Room.Name == "" {
			continue
		}
		if _, ok := seen[a.Room.Name]; ok {
			continue
		}
		seen[a.Room.Name] = struct{}{}
		names = append(names, a.Room.Name)
	}
	return names
}

// DayCount is the number of appointments booked on a calendar day.
type DayCount struct {
	Date  Date
	Count int
}

// CountByDate groups appointments per day, ordered by date.
func CountByDate(appts []Appointment) []DayCount {
	counts := make(map[Date]int)
	for _, a := range appts {
		counts[a.DateTime.Date]++
	}
	out := make([]DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DayCount{Date: d, Count: n})
	}
	slices.SortFunc(out, func(a, b DayCount) int { return a.Date.Compare(b.Date) })
	return out
}

// SortNewestFirst returns a copy ordered by descending wall clock, ties by id.
func SortNewestFirst(appts []Appointment) []Appointment {
	out := slices.Clone(appts)
	slices.SortStableFunc(out, func(a, b Appointment) int {
		if c := b.DateTime.Compare(a.DateTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
