package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/recurrence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

func (c *cli) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "Book, move and report appointments",
	}
	cmd.AddCommand(
		c.bookCmd(),
		c.seriesCmd(),
		c.rescheduleCmd(),
		c.attendanceCmd(),
		c.commentCmd(),
		c.deleteAppointmentCmd(),
		c.listAppointmentsCmd(),
		c.slotsCmd(),
		c.freeRoomsCmd(),
		c.daysCmd(),
		c.exportCmd(),
	)
	return cmd
}

func (c *cli) bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book one or more appointments for a client in one all-or-nothing batch",
		Long: "Book appointments for a client. Use --date/--time/--room for a single booking, or\n" +
			"repeat --slot DATE,TIME,ROOM to book several slots together. Nothing is stored\n" +
			"when any slot conflicts.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			base := bookingFromFlags(cmd.Flags())
			slots, _ := cmd.Flags().GetStringArray("slot")

			bookings := make([]application.AppointmentInput, 0, max(1, len(slots)))
			if len(slots) == 0 {
				bookings = append(bookings, base)
			}
			for _, slot := range slots {
				parts := strings.Split(slot, ",")
				if len(parts) != 3 {
					return fmt.Errorf("--slot %q: expected DATE,TIME,ROOM", slot)
				}
				booking := base
				booking.Date = strings.TrimSpace(parts[0])
				booking.Time = strings.TrimSpace(parts[1])
				booking.RoomID = strings.TrimSpace(parts[2])
				bookings = append(bookings, booking)
			}

			created, err := rt.appointments.CreateAppointments(cmd.Context(), application.CreateAppointmentsParams{Bookings: bookings})
			if err != nil {
				return err
			}
			return c.printAppointments(created)
		},
	}
	addBookingFlags(cmd.Flags())
	cmd.Flags().StringArray("slot", nil, "DATE,TIME,ROOM of one booking; repeat for a batch")
	return cmd
}

func (c *cli) seriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Book a recurring series of appointments",
		Long: "Book the occurrences of a recurring series starting at --date/--time. Describe the\n" +
			"series with --frequency and its options, or pass a raw RFC 5545 rule with --rule.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			params := application.CreateSeriesParams{Booking: bookingFromFlags(cmd.Flags())}
			params.Rule, _ = cmd.Flags().GetString("rule")
			if params.Rule == "" {
				params.Series, err = seriesFromFlags(cmd.Flags())
				if err != nil {
					return err
				}
			}
			created, err := rt.appointments.CreateSeries(cmd.Context(), params)
			if err != nil {
				return err
			}
			return c.printAppointments(created)
		},
	}
	addBookingFlags(cmd.Flags())
	flags := cmd.Flags()
	flags.String("frequency", "weekly", "daily or weekly")
	flags.Int("interval", 1, "Repeat every N days or weeks")
	flags.Int("count", 0, "Number of occurrences, excluded dates included")
	flags.String("until", "", "Last possible date, YYYY-MM-DD (inclusive)")
	flags.StringSlice("weekday", nil, "Weekdays for weekly series (mon,tue,...)")
	flags.StringSlice("except", nil, "Dates to skip, YYYY-MM-DD")
	flags.String("rule", "", "RFC 5545 RRULE, e.g. FREQ=WEEKLY;BYDAY=MO,TH;COUNT=6")
	return cmd
}

func (c *cli) rescheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reschedule <appointment-id>",
		Short: "Move an appointment to another date, time or room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			date, _ := cmd.Flags().GetString("date")
			at, _ := cmd.Flags().GetString("time")
			room, _ := cmd.Flags().GetString("room")
			appt, err := rt.appointments.RescheduleAppointment(cmd.Context(), application.RescheduleParams{
				AppointmentID: args[0],
				Date:          date,
				Time:          at,
				RoomID:        room,
			})
			if err != nil {
				return err
			}
			return c.printAppointment(appt)
		},
	}
	cmd.Flags().String("date", "", "New date, YYYY-MM-DD")
	cmd.Flags().String("time", "", "New time, HH:MM")
	cmd.Flags().String("room", "", "New room id (default keeps the current room)")
	return cmd
}

func (c *cli) attendanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attendance <appointment-id> <status>",
		Short: "Record attendance: pending, confirmed, no_attendance or reprogrammed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			appt, err := rt.appointments.UpdateAttendance(cmd.Context(), application.UpdateAttendanceParams{
				AppointmentID: args[0],
				Status:        args[1],
			})
			if err != nil {
				return err
			}
			return c.printAppointment(appt)
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <appointment-id> <text>",
		Short: "Replace the comments of an appointment; an empty text clears them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			appt, err := rt.appointments.UpdateComments(cmd.Context(), application.UpdateCommentsParams{
				AppointmentID: args[0],
				Comments:      args[1],
			})
			if err != nil {
				return err
			}
			return c.printAppointment(appt)
		},
	}
}

func (c *cli) deleteAppointmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <appointment-id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.appointments.DeleteAppointment(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.print(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted appointment %s\n", args[0])
			})
		},
	}
}

func (c *cli) listAppointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			params, err := listParamsFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			appts, err := rt.appointments.ListAppointments(cmd.Context(), params)
			if err != nil {
				return err
			}
			return c.printAppointments(appts)
		},
	}
	addListFlags(cmd.Flags())
	return cmd
}

func (c *cli) slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots <date>",
		Short: "List start times with at least one free room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			slots, err := rt.appointments.AvailableTimeSlots(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			times := timesShort(slots)
			return c.print(times, func(w io.Writer) {
				if len(times) == 0 {
					fmt.Fprintf(w, "no free slots on %s\n", args[0])
					return
				}
				fmt.Fprintln(w, strings.Join(times, "\n"))
			})
		},
	}
}

func (c *cli) freeRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms <date> <time>",
		Short: "List the rooms free at a date and time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			free, err := rt.appointments.AvailableRooms(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			view := availabilityView{Date: free.Date.String(), Time: free.Time.Short(), Rooms: free.RoomIDs}
			if view.Rooms == nil {
				view.Rooms = []string{}
			}
			return c.print(view, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\t%s\n", view.Date, view.Time, strings.Join(view.Rooms, ", "))
			})
		},
	}
}

func (c *cli) daysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "Count appointments per booked day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			days, err := rt.appointments.CalendarDays(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]dayView, len(days))
			for i, day := range days {
				views[i] = dayView{Date: day.Date.String(), Count: day.Count}
			}
			return c.print(views, func(w io.Writer) {
				fmt.Fprintln(w, "DATE\tAPPOINTMENTS")
				for _, day := range views {
					fmt.Fprintf(w, "%s\t%d\n", day.Date, day.Count)
				}
			})
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching appointments as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			params, err := listParamsFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			doc, err := rt.appointments.ExportCalendar(cmd.Context(), params)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "-" {
				_, err = io.WriteString(c.stdout, doc)
				return err
			}
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write calendar: %w", err)
			}
			fmt.Fprintf(c.stderr, "wrote %s\n", output)
			return nil
		},
	}
	addListFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "", "Write the calendar to this file instead of stdout")
	return cmd
}

func addBookingFlags(flags *pflag.FlagSet) {
	flags.String("client", "", "Client id")
	flags.String("date", "", "Date, YYYY-MM-DD")
	flags.String("time", "", "Time, HH:MM")
	flags.String("room", "", "Room id")
	flags.Bool("shared", false, "Shared session")
	flags.String("comments", "", "Free-text comments")
}

func bookingFromFlags(flags *pflag.FlagSet) application.AppointmentInput {
	var input application.AppointmentInput
	input.ClientID, _ = flags.GetString("client")
	input.Date, _ = flags.GetString("date")
	input.Time, _ = flags.GetString("time")
	input.RoomID, _ = flags.GetString("room")
	input.IsShared, _ = flags.GetBool("shared")
	input.Comments, _ = flags.GetString("comments")
	return input
}

func seriesFromFlags(flags *pflag.FlagSet) (recurrence.Series, error) {
	var series recurrence.Series
	freq, _ := flags.GetString("frequency")
	frequency, err := recurrence.ParseFrequency(freq)
	if err != nil {
		return series, err
	}
	series.Frequency = frequency
	series.Interval, _ = flags.GetInt("interval")
	series.Count, _ = flags.GetInt("count")

	if until, _ := flags.GetString("until"); until != "" {
		day, err := scheduler.ParseDate(until)
		if err != nil {
			return series, fmt.Errorf("--until: %w", err)
		}
		series.Until = &day
	}
	weekdays, _ := flags.GetStringSlice("weekday")
	for _, name := range weekdays {
		day, err := parseWeekday(name)
		if err != nil {
			return series, err
		}
		series.Weekdays = append(series.Weekdays, day)
	}
	except, _ := flags.GetStringSlice("except")
	for _, value := range except {
		day, err := scheduler.ParseDate(value)
		if err != nil {
			return series, fmt.Errorf("--except: %w", err)
		}
		series.Except = append(series.Except, day)
	}
	return series, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekday(value string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if len(key) > 3 {
		key = key[:3]
	}
	day, ok := weekdayNames[key]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", value)
	}
	return day, nil
}

func addListFlags(flags *pflag.FlagSet) {
	flags.String("date", "", "Only this date, YYYY-MM-DD")
	flags.String("room", "", "Only this room id")
	flags.String("client", "", "Only this client id")
	flags.String("search", "", "Client name or id number substring")
	flags.String("room-name", "", "Only this room name")
	flags.String("attendance", "", "Only this attendance status")
}

func listParamsFromFlags(flags *pflag.FlagSet) (application.ListAppointmentsParams, error) {
	var params application.ListAppointmentsParams
	params.Date, _ = flags.GetString("date")
	params.RoomID, _ = flags.GetString("room")
	params.ClientID, _ = flags.GetString("client")
	params.Filter.Search, _ = flags.GetString("search")
	params.Filter.RoomName, _ = flags.GetString("room-name")
	if value, _ := flags.GetString("attendance"); value != "" {
		status, err := scheduler.ParseAttendanceStatus(value)
		if err != nil {
			return params, fmt.Errorf("--attendance: %w", err)
		}
		params.Filter.Attendance = status
	}
	return params, nil
}

func (c *cli) printAppointment(appt application.Appointment) error {
	return c.print(newAppointmentView(appt), func(w io.Writer) {
		writeAppointments(w, []application.Appointment{appt})
	})
}

func (c *cli) printAppointments(appts []application.Appointment) error {
	return c.print(newAppointmentViews(appts), func(w io.Writer) { writeAppointments(w, appts) })
}
