// Package calendar renders appointments as an iCalendar feed.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/clinic-scheduler/internal/scheduler"
)

const (
	// DefaultProductID identifies the generator in PRODID.
	DefaultProductID = "-//clinic-scheduler//appointments//ES"
	// DefaultSlotLength is the duration given to every exported appointment.
	DefaultSlotLength = 30 * time.Minute

	floatingLayout = "20060102T150405"
)

// ErrMissingID is returned when an appointment without an id is exported.
var ErrMissingID = errors.New("calendar: appointment id is required")

// ExportOptions configures Export. Zero values select defaults.
type ExportOptions struct {
	ProductID  string
	SlotLength time.Duration
	Now        func() time.Time
}

// Export serialises appointments into a VCALENDAR document. DTSTART and DTEND are
// written as floating local times so the clinic wall clock is preserved exactly.
func Export(appointments []scheduler.Appointment, opts ExportOptions) (string, error) {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.SlotLength <= 0 {
		opts.SlotLength = DefaultSlotLength
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stamp := opts.Now().UTC()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)

	for _, appt := range appointments {
		if strings.TrimSpace(appt.ID) == "" {
			return "", ErrMissingID
		}
		start := appt.DateTime.In(time.UTC)
		end := start.Add(opts.SlotLength)

		event := cal.AddEvent(appt.ID)
		event.SetDtStampTime(stamp)
		event.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
		event.SetProperty(ical.ComponentPropertyDtEnd, end.Format(floatingLayout))
		event.SetSummary(summary(appt))
		if appt.Room.Name != "" {
			event.SetLocation(appt.Room.Name)
		}
		event.SetDescription(description(appt))
		if appt.AttendanceStatus == scheduler.AttendanceConfirmed {
			event.SetStatus(ical.ObjectStatusConfirmed)
		} else {
			event.SetStatus(ical.ObjectStatusTentative)
		}
	}

	return cal.Serialize(), nil
}

func summary(appt scheduler.Appointment) string {
	if appt.ClientName != "" {
		return appt.ClientName
	}
	return fmt.Sprintf("Cita %s", appt.ID)
}

func description(appt scheduler.Appointment) string {
	parts := []string{"Asistencia: " + appt.AttendanceStatus.Label()}
	if appt.ClientIDNumber != "" {
		parts = append(parts, "Cédula: "+appt.ClientIDNumber)
	}
	if c := strings.TrimSpace(appt.Comments); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, "\n")
}
