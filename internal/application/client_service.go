package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// ClientRepository captures the persistence operations needed by the client directory.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) (Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	GetClientByIDNumber(ctx context.Context, idNumber string) (Client, error)
	UpdateClient(ctx context.Context, client Client) (Client, error)
	DeleteClient(ctx context.Context, id string) error
	ListClients(ctx context.Context) ([]Client, error)
}

// ClientService manages the patient directory.
type ClientService struct {
	clients     ClientRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClientService constructs a client service with the provided dependencies.
func NewClientService(clients ClientRepository, idGenerator func() string, now func() time.Time) *ClientService {
	return NewClientServiceWithLogger(clients, idGenerator, now, nil)
}

// NewClientServiceWithLogger constructs a client service with a specified logger.
func NewClientServiceWithLogger(clients ClientRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClientService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClientService{clients: clients, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ClientService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClientService", operation, attrs...)
}

// CreateClient validates input and registers a new patient.
func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateClient")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create client", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("client_id", client.ID).InfoContext(ctx, "client created")
	}()

	vErr := validateClientInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	client = normalizeClient(input)
	client.ID = s.idGenerator()
	client.CreatedAt = s.now()
	client.UpdatedAt = client.CreatedAt

	client, err = s.clients.CreateClient(ctx, client)
	if err != nil {
		err = mapClientRepoError(err)
	}
	return
}

// UpdateClient overwrites the directory entry of an existing patient.
func (s *ClientService) UpdateClient(ctx context.Context, params UpdateClientParams) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClient", "client_id", params.ClientID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update client", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "client updated")
	}()

	var existing Client
	existing, err = s.clients.GetClient(ctx, params.ClientID)
	if err != nil {
		err = mapClientRepoError(err)
		return
	}

	vErr := validateClientInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := normalizeClient(params.Input)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	client, err = s.clients.UpdateClient(ctx, updated)
	if err != nil {
		err = mapClientRepoError(err)
	}
	return
}

// GetClient returns a patient by id.
func (s *ClientService) GetClient(ctx context.Context, clientID string) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return Client{}, ErrNotFound
	}
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return Client{}, mapClientRepoError(err)
	}
	return client, nil
}

// GetClientByIDNumber returns a patient by national id number.
func (s *ClientService) GetClientByIDNumber(ctx context.Context, idNumber string) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return Client{}, ErrNotFound
	}
	client, err := s.clients.GetClientByIDNumber(ctx, strings.TrimSpace(idNumber))
	if err != nil {
		return Client{}, mapClientRepoError(err)
	}
	return client, nil
}

// DeleteClient removes a patient without appointments.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	if s == nil {
		return fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return fmt.Errorf("client repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteClient", "client_id", clientID)
	if err := s.clients.DeleteClient(ctx, clientID); err != nil {
		err = mapClientRepoError(err)
		logger.ErrorContext(ctx, "failed to delete client", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "client deleted")
	return nil
}

// ListClients returns the directory ordered by full name.
func (s *ClientService) ListClients(ctx context.Context) ([]Client, error) {
	return s.SearchClients(ctx, "")
}

// SearchClients returns the patients whose id number or full name contains query,
// ignoring case. An empty query matches everyone.
func (s *ClientService) SearchClients(ctx context.Context, query string) (clients []Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "SearchClients", "query", query)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to search clients", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(clients)).DebugContext(ctx, "clients listed")
	}()

	var raw []Client
	raw, err = s.clients.ListClients(ctx)
	if err != nil {
		return
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	clients = make([]Client, 0, len(raw))
	for _, client := range raw {
		if needle != "" &&
			!strings.Contains(strings.ToLower(client.IDNumber), needle) &&
			!strings.Contains(strings.ToLower(client.FullName), needle) {
			continue
		}
		clients = append(clients, client)
	}

	sort.Slice(clients, func(i, j int) bool {
		a, b := strings.ToLower(clients[i].FullName), strings.ToLower(clients[j].FullName)
		if a == b {
			return clients[i].ID < clients[j].ID
		}
		return a < b
	})
	return
}

func validateClientInput(input ClientInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.IDNumber) == "" {
		vErr.add("idNumber", "id number is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("fullName", "full name is required")
	}
	if email := normalizeOptionalString(input.Email); email != nil {
		if addr, err := mail.ParseAddress(*email); err != nil || addr.Address != *email {
			vErr.add("email", "email is not valid")
		}
	}
	if input.Age != nil && *input.Age < 0 {
		vErr.add("age", "age must not be negative")
	}

	return vErr
}

func normalizeClient(input ClientInput) Client {
	var age *int
	if input.Age != nil {
		value := *input.Age
		age = &value
	}
	return Client{
		IDNumber:       strings.TrimSpace(input.IDNumber),
		FullName:       strings.TrimSpace(input.FullName),
		Email:          normalizeOptionalString(input.Email),
		Phone:          normalizeOptionalString(input.Phone),
		EmergencyPhone: normalizeOptionalString(input.EmergencyPhone),
		Address:        normalizeOptionalString(input.Address),
		Age:            age,
	}
}

func mapClientRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrInUse
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("client", "client violates a storage constraint")
		return vErr
	}
	return err
}
