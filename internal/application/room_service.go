package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomService orchestrates validation and persistence for the room catalog.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	id := strings.TrimSpace(params.ID)
	if id == "" {
		id = s.idGenerator()
	}
	created := s.now()
	room, err = s.rooms.CreateRoom(ctx, Room{ID: id, Name: strings.TrimSpace(params.Input.Name), CreatedAt: created, UpdatedAt: created})
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

// UpdateRoom renames an existing room.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom", "room_id", params.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.UpdatedAt = s.now()

	room, err = s.rooms.UpdateRoom(ctx, updated)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	return
}

// DeleteRoom removes a room that holds no appointments.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom", "room_id", roomID)

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		err = mapRoomRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

// GetRoom returns a single room.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, ErrNotFound
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// ListRooms returns the catalog of rooms ordered by name.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	rooms = make([]Room, len(raw))
	copy(rooms, raw)
	sortRooms(rooms)
	return
}

// SyncCatalog makes storage match the configured catalog. Missing rooms are
// created with their catalog id and renamed rooms take the catalog name. Rooms
// absent from the catalog are left untouched.
func (s *RoomService) SyncCatalog(ctx context.Context, catalog []CatalogRoom) (result SyncCatalogResult, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SyncCatalog", "catalog_size", len(catalog))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to sync room catalog", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room catalog synced",
			"created", len(result.Created),
			"renamed", len(result.Renamed),
			"unchanged", len(result.Unchanged),
		)
	}()

	vErr := validateCatalog(catalog)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	for _, entry := range catalog {
		id := strings.TrimSpace(entry.ID)
		name := strings.TrimSpace(entry.Name)

		existing, getErr := s.rooms.GetRoom(ctx, id)
		switch {
		case getErr == nil && existing.Name == name:
			result.Unchanged = append(result.Unchanged, id)
		case getErr == nil:
			existing.Name = name
			existing.UpdatedAt = s.now()
			if _, err = s.rooms.UpdateRoom(ctx, existing); err != nil {
				err = fmt.Errorf("rename room %s: %w", id, mapRoomRepoError(err))
				return
			}
			result.Renamed = append(result.Renamed, id)
		case errors.Is(mapRoomRepoError(getErr), ErrNotFound):
			created := s.now()
			if _, err = s.rooms.CreateRoom(ctx, Room{ID: id, Name: name, CreatedAt: created, UpdatedAt: created}); err != nil {
				err = fmt.Errorf("create room %s: %w", id, mapRoomRepoError(err))
				return
			}
			result.Created = append(result.Created, id)
		default:
			err = getErr
			return
		}
	}
	return
}

func sortRooms(rooms []Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}

	return vErr
}

func validateCatalog(catalog []CatalogRoom) *ValidationError {
	vErr := &ValidationError{}
	ids := make(map[string]struct{}, len(catalog))
	names := make(map[string]struct{}, len(catalog))
	for i, entry := range catalog {
		id := strings.TrimSpace(entry.ID)
		name := strings.TrimSpace(entry.Name)
		if id == "" {
			vErr.add(fmt.Sprintf("rooms[%d].id", i), "id is required")
		} else if _, dup := ids[id]; dup {
			vErr.add(fmt.Sprintf("rooms[%d].id", i), "id is duplicated")
		}
		if name == "" {
			vErr.add(fmt.Sprintf("rooms[%d].name", i), "name is required")
		} else if _, dup := names[name]; dup {
			vErr.add(fmt.Sprintf("rooms[%d].name", i), "name is duplicated")
		}
		ids[id] = struct{}{}
		names[name] = struct{}{}
	}
	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
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
		vErr.add("name", "name is required")
		return vErr
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
