package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// ClientRepository implements persistence.ClientRepository using SQLite
type ClientRepository struct {
	pool *ConnectionPool
}

// NewClientRepository creates a new SQLite client repository
func NewClientRepository(pool *ConnectionPool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientColumns = `id, id_number, full_name, email, phone, emergency_phone, address, age, created_at, updated_at`

// CreateClient inserts a new client. The id number must be unique.
func (r *ClientRepository) CreateClient(ctx context.Context, client persistence.Client) error {
	if client.ID == "" || strings.TrimSpace(client.IDNumber) == "" || strings.TrimSpace(client.FullName) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.pool.DB().ExecContext(ctx, query,
		client.ID,
		client.IDNumber,
		client.FullName,
		nullableString(client.Email),
		nullableString(client.Phone),
		nullableString(client.EmergencyPhone),
		nullableString(client.Address),
		nullableInt(client.Age),
		formatTimestamp(client.CreatedAt),
		formatTimestamp(client.UpdatedAt),
	)
	return mapError(err)
}

// UpdateClient overwrites every mutable column of an existing client
func (r *ClientRepository) UpdateClient(ctx context.Context, client persistence.Client) error {
	if client.ID == "" || strings.TrimSpace(client.IDNumber) == "" || strings.TrimSpace(client.FullName) == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		UPDATE clients
		SET id_number = ?, full_name = ?, email = ?, phone = ?, emergency_phone = ?,
		    address = ?, age = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		client.IDNumber,
		client.FullName,
		nullableString(client.Email),
		nullableString(client.Phone),
		nullableString(client.EmergencyPhone),
		nullableString(client.Address),
		nullableInt(client.Age),
		formatTimestamp(client.UpdatedAt),
		client.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(result)
}

// GetClient retrieves a client by ID
func (r *ClientRepository) GetClient(ctx context.Context, id string) (persistence.Client, error) {
	if id == "" {
		return persistence.Client{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	client, err := scanClient(row)
	if err != nil {
		return persistence.Client{}, mapError(err)
	}
	return client, nil
}

// GetClientByIDNumber retrieves a client by national id number
func (r *ClientRepository) GetClientByIDNumber(ctx context.Context, idNumber string) (persistence.Client, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return persistence.Client{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id_number = ?`, idNumber)
	client, err := scanClient(row)
	if err != nil {
		return persistence.Client{}, mapError(err)
	}
	return client, nil
}

// ListClients returns all clients ordered by full name then ID
func (r *ClientRepository) ListClients(ctx context.Context) ([]persistence.Client, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY full_name COLLATE NOCASE ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var clients []persistence.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, mapError(err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return clients, nil
}

// DeleteClient removes a client without appointments
func (r *ClientRepository) DeleteClient(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(result)
}

func scanClient(row rowScanner) (persistence.Client, error) {
	var (
		client                                persistence.Client
		email, phone, emergencyPhone, address sql.NullString
		age                                   sql.NullInt64
		createdAtStr, updatedAtStr            string
	)
	if err := row.Scan(
		&client.ID,
		&client.IDNumber,
		&client.FullName,
		&email,
		&phone,
		&emergencyPhone,
		&address,
		&age,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return persistence.Client{}, err
	}

	client.Email = stringPtr(email)
	client.Phone = stringPtr(phone)
	client.EmergencyPhone = stringPtr(emergencyPhone)
	client.Address = stringPtr(address)
	if age.Valid {
		v := int(age.Int64)
		client.Age = &v
	}

	var err error
	if client.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.Client{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.Client{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return client, nil
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
