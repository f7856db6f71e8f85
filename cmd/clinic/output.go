package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

type migrationView struct {
	CurrentVersion string `json:"currentVersion"`
	Applied        int    `json:"applied"`
	Pending        int    `json:"pending"`
}

type roomView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type syncView struct {
	Created   []string `json:"created"`
	Renamed   []string `json:"renamed"`
	Unchanged []string `json:"unchanged"`
}

type clientView struct {
	ID             string  `json:"id"`
	IDNumber       string  `json:"idNumber"`
	FullName       string  `json:"fullName"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	EmergencyPhone *string `json:"emergencyPhone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Age            *int    `json:"age,omitempty"`
}

type appointmentView struct {
	ID               string `json:"id"`
	ClientID         string `json:"clientId"`
	ClientName       string `json:"clientName"`
	ClientIDNumber   string `json:"clientIdNumber"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	RoomID           string `json:"roomId"`
	RoomName         string `json:"roomName"`
	AttendanceStatus string `json:"attendanceStatus"`
	Comments         string `json:"comments,omitempty"`
	IsShared         bool   `json:"isShared"`
}

type availabilityView struct {
	Date  string   `json:"date"`
	Time  string   `json:"time"`
	Rooms []string `json:"rooms"`
}

type dayView struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func newRoomView(room application.Room) roomView {
	return roomView{ID: room.ID, Name: room.Name}
}

func newClientView(client application.Client) clientView {
	return clientView{
		ID:             client.ID,
		IDNumber:       client.IDNumber,
		FullName:       client.FullName,
		Email:          client.Email,
		Phone:          client.Phone,
		EmergencyPhone: client.EmergencyPhone,
		Address:        client.Address,
		Age:            client.Age,
	}
}

func newAppointmentView(appt application.Appointment) appointmentView {
	return appointmentView{
		ID:               appt.ID,
		ClientID:         appt.ClientID,
		ClientName:       appt.ClientName,
		ClientIDNumber:   appt.ClientIDNumber,
		Date:             appt.DateTime.Date.String(),
		Time:             appt.DateTime.Time.Short(),
		RoomID:           appt.RoomID,
		RoomName:         appt.RoomName,
		AttendanceStatus: string(appt.AttendanceStatus),
		Comments:         appt.Comments,
		IsShared:         appt.IsShared,
	}
}

func newAppointmentViews(appts []application.Appointment) []appointmentView {
	views := make([]appointmentView, len(appts))
	for i, appt := range appts {
		views[i] = newAppointmentView(appt)
	}
	return views
}

// print writes v as indented JSON when --json is set, and otherwise calls text.
func (c *cli) print(v any, text func(w io.Writer)) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func writeAppointments(w io.Writer, appts []application.Appointment) {
	fmt.Fprintln(w, "ID\tDATE\tTIME\tROOM\tCLIENT\tSTATUS")
	for _, appt := range appts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			appt.ID,
			appt.DateTime.Date.String(),
			appt.DateTime.Time.Short(),
			appt.RoomName,
			appt.ClientName,
			appt.AttendanceStatus.Label(),
		)
	}
}

func writeClients(w io.Writer, clients []application.Client) {
	fmt.Fprintln(w, "ID\tID NUMBER\tNAME\tEMAIL")
	for _, client := range clients {
		email := ""
		if client.Email != nil {
			email = *client.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", client.ID, client.IDNumber, client.FullName, email)
	}
}

func timesShort(times []scheduler.TimeOfDay) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Short()
	}
	return out
}

// formatError renders service errors for operators: one line per conflict
// or invalid field.
func formatError(err error) string {
	var conflictErr *application.ConflictError
	if errors.As(err, &conflictErr) {
		return "error: " + strings.Join(conflictErr.Messages(), "\nerror: ")
	}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		lines := make([]string, 0, len(vErr.FieldErrors))
		for _, field := range sortedFields(vErr.FieldErrors) {
			lines = append(lines, fmt.Sprintf("invalid %s: %s", field, vErr.FieldErrors[field]))
		}
		return "error: " + strings.Join(lines, "\nerror: ")
	}
	switch {
	case errors.Is(err, application.ErrNotFound):
		return "error: not found"
	case errors.Is(err, application.ErrSlotTaken):
		return "error: the slot was booked by someone else; reload and try again"
	}
	return "error: " + err.Error()
}

func sortedFields(fields map[string]string) []string {
	return slices.Sorted(maps.Keys(fields))
}
