package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// AppointmentRepository implements persistence.AppointmentRepository using SQLite.
// The UNIQUE(appointment_date, appointment_time, room_id) constraint is the
// authoritative guard against double booking.
type AppointmentRepository struct {
	pool  *ConnectionPool
	retry RetryConfig
}

// NewAppointmentRepository creates a new SQLite appointment repository
func NewAppointmentRepository(pool *ConnectionPool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, retry: DefaultRetryConfig()}
}

const appointmentColumns = `id, client_id, room_id, appointment_date, appointment_time,
	attendance_status, comments, is_shared, created_at, updated_at`

// CreateAppointments inserts all appointments in one transaction.
func (r *AppointmentRepository) CreateAppointments(ctx context.Context, appointments []persistence.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}
	for _, appt := range appointments {
		if err := validateAppointment(appt); err != nil {
			return err
		}
	}

	query := `INSERT INTO appointments (` + appointmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return withRetry(ctx, r.retry, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, query)
			if err != nil {
				return mapError(err)
			}
			defer stmt.Close()

			for _, appt := range appointments {
				if _, err := stmt.ExecContext(ctx,
					appt.ID,
					appt.ClientID,
					appt.RoomID,
					appt.Date,
					appt.Time,
					attendanceOrDefault(appt.AttendanceStatus),
					nullableString(appt.Comments),
					appt.IsShared,
					formatTimestamp(appt.CreatedAt),
					formatTimestamp(appt.UpdatedAt),
				); err != nil {
					return mapError(err)
				}
			}
			return nil
		})
	})
}

// UpdateAppointment overwrites the slot, status and comments of an appointment.
func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, appt persistence.Appointment) error {
	if err := validateAppointment(appt); err != nil {
		return err
	}

	const query = `
		UPDATE appointments
		SET client_id = ?, room_id = ?, appointment_date = ?, appointment_time = ?,
		    attendance_status = ?, comments = ?, is_shared = ?, updated_at = ?
		WHERE id = ?
	`
	return withRetry(ctx, r.retry, func() error {
		result, err := r.pool.DB().ExecContext(ctx, query,
			appt.ClientID,
			appt.RoomID,
			appt.Date,
			appt.Time,
			attendanceOrDefault(appt.AttendanceStatus),
			nullableString(appt.Comments),
			appt.IsShared,
			formatTimestamp(appt.UpdatedAt),
			appt.ID,
		)
		if err != nil {
			return mapError(err)
		}
		return expectOneRow(result)
	})
}

// GetAppointment retrieves an appointment by ID
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	if id == "" {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}
	return appt, nil
}

// ListAppointments returns appointments matching filter ordered by date, time, room.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Date != "" {
		clauses = append(clauses, "appointment_date = ?")
		args = append(args, filter.Date)
	}
	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY appointment_date ASC, appointment_time ASC, room_id ASC"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var appointments []persistence.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, mapError(err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return appointments, nil
}

// DeleteAppointment removes an appointment by ID
func (r *AppointmentRepository) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(result)
}

func validateAppointment(appt persistence.Appointment) error {
	if appt.ID == "" || appt.ClientID == "" || appt.RoomID == "" || appt.Date == "" || appt.Time == "" {
		return persistence.ErrConstraintViolation
	}
	return nil
}

func attendanceOrDefault(status string) string {
	if status == "" {
		return "pending"
	}
	return status
}

func scanAppointment(row rowScanner) (persistence.Appointment, error) {
	var (
		appt                       persistence.Appointment
		comments                   sql.NullString
		createdAtStr, updatedAtStr string
	)
	if err := row.Scan(
		&appt.ID,
		&appt.ClientID,
		&appt.RoomID,
		&appt.Date,
		&appt.Time,
		&appt.AttendanceStatus,
		&comments,
		&appt.IsShared,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return persistence.Appointment{}, err
	}
	appt.Comments = stringPtr(comments)

	var err error
	if appt.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if appt.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return appt, nil
}
