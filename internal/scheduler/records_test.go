package scheduler

import (
	"slices"
	"testing"
)

func recordFixtures() []Appointment {
	a1 := appointmentAt("a1", "2025-07-17", "09:00", "1")
	a1.ClientName, a1.ClientIDNumber = "María Pérez", "0912345678"
	a2 := appointmentAt("a2", "2025-07-18", "10:00", "2")
	a2.ClientName, a2.ClientIDNumber = "Juan Torres", "1709876543"
	a2.AttendanceStatus = AttendanceConfirmed
	a3 := appointmentAt("a3", "2025-07-17", "11:00", "1")
	a3.ClientName, a3.ClientIDNumber = "Ana María Ruiz", "0923456789"
	a3.AttendanceStatus = AttendanceNoAttendance
	return []Appointment{a1, a2, a3}
}

func ids(appts []Appointment) []string {
	out := make([]string, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.ID)
	}
	return out
}

func TestFilterAppointments(t *testing.T) {
	appts := recordFixtures()
	cases := []struct {
		name   string
		filter RecordFilter
		want   []string
	}{
		{"empty filter keeps all", RecordFilter{}, []string{"a1", "a2", "a3"}},
		{"name is case insensitive", RecordFilter{Search: "maría"}, []string{"a1", "a3"}},
		{"id number substring", RecordFilter{Search: "0987"}, []string{"a2"}},
		{"room name", RecordFilter{RoomName: "Sala 1"}, []string{"a1", "a3"}},
		{"attendance", RecordFilter{Attendance: AttendanceConfirmed}, []string{"a2"}},
		{"combined", RecordFilter{Search: "ruiz", RoomName: "Sala 1", Attendance: AttendanceNoAttendance}, []string{"a3"}},
		{"no match", RecordFilter{Search: "nobody"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(FilterAppointments(appts, tc.filter)); !slices.Equal(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRoomNames(t *testing.T) {
	if got := RoomNames(recordFixtures()); !slices.Equal(got, []string{"Sala 1", "Sala 2"}) {
		t.Fatalf("unexpected room names %v", got)
	}
}

func TestCountByDate(t *testing.T) {
	got := CountByDate(recordFixtures())
	want := []DayCount{{Date: MustDate(2025, 7, 17), Count: 2}, {Date: MustDate(2025, 7, 18), Count: 1}}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSortNewestFirst(t *testing.T) {
	appts := recordFixtures()
	tie := appointmentAt("a0", "2025-07-18", "10:00", "3")
	appts = append(appts, tie)

	got := ids(SortNewestFirst(appts))
	if want := []string{"a0", "a2", "a3", "a1"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if appts[0].ID != "a1" {
		t.Fatalf("input must not be reordered")
	}
}

func TestAttendanceStatus(t *testing.T) {
	status, err := ParseAttendanceStatus(" Confirmed ")
	if err != nil || status != AttendanceConfirmed {
		t.Fatalf("expected confirmed, got %q %v", status, err)
	}
	if AttendanceNoAttendance.Label() != "No asistió" {
		t.Fatalf("unexpected label %q", AttendanceNoAttendance.Label())
	}
	if _, err := ParseAttendanceStatus("cancelled"); err == nil {
		t.Fatalf("expected unknown status to be rejected")
	}
}
