package main

import (
	"context"
	"fmt"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.ID)
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.ID)
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	rooms, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]application.Room, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, toApplicationRoom(room))
	}
	return result, nil
}

type clientRepositoryAdapter struct {
	repo persistence.ClientRepository
}

func newClientRepositoryAdapter(repo persistence.ClientRepository) *clientRepositoryAdapter {
	return &clientRepositoryAdapter{repo: repo}
}

func (a *clientRepositoryAdapter) CreateClient(ctx context.Context, client application.Client) (application.Client, error) {
	if err := a.repo.CreateClient(ctx, toPersistenceClient(client)); err != nil {
		return application.Client{}, err
	}
	return a.GetClient(ctx, client.ID)
}

func (a *clientRepositoryAdapter) GetClient(ctx context.Context, id string) (application.Client, error) {
	stored, err := a.repo.GetClient(ctx, id)
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (a *clientRepositoryAdapter) GetClientByIDNumber(ctx context.Context, idNumber string) (application.Client, error) {
	stored, err := a.repo.GetClientByIDNumber(ctx, idNumber)
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (a *clientRepositoryAdapter) UpdateClient(ctx context.Context, client application.Client) (application.Client, error) {
	if err := a.repo.UpdateClient(ctx, toPersistenceClient(client)); err != nil {
		return application.Client{}, err
	}
	return a.GetClient(ctx, client.ID)
}

func (a *clientRepositoryAdapter) DeleteClient(ctx context.Context, id string) error {
	return a.repo.DeleteClient(ctx, id)
}

func (a *clientRepositoryAdapter) ListClients(ctx context.Context) ([]application.Client, error) {
	clients, err := a.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]application.Client, 0, len(clients))
	for _, client := range clients {
		result = append(result, toApplicationClient(client))
	}
	return result, nil
}

type appointmentRepositoryAdapter struct {
	repo persistence.AppointmentRepository
}

func newAppointmentRepositoryAdapter(repo persistence.AppointmentRepository) *appointmentRepositoryAdapter {
	return &appointmentRepositoryAdapter{repo: repo}
}

func (a *appointmentRepositoryAdapter) CreateAppointments(ctx context.Context, appts []application.Appointment) ([]application.Appointment, error) {
	models := make([]persistence.Appointment, len(appts))
	for i, appt := range appts {
		models[i] = toPersistenceAppointment(appt)
	}
	if err := a.repo.CreateAppointments(ctx, models); err != nil {
		return nil, err
	}
	created := make([]application.Appointment, 0, len(appts))
	for _, appt := range appts {
		stored, err := a.GetAppointment(ctx, appt.ID)
		if err != nil {
			return nil, err
		}
		created = append(created, stored)
	}
	return created, nil
}

func (a *appointmentRepositoryAdapter) GetAppointment(ctx context.Context, id string) (application.Appointment, error) {
	stored, err := a.repo.GetAppointment(ctx, id)
	if err != nil {
		return application.Appointment{}, err
	}
	return toApplicationAppointment(stored)
}

func (a *appointmentRepositoryAdapter) UpdateAppointment(ctx context.Context, appt application.Appointment) (application.Appointment, error) {
	if err := a.repo.UpdateAppointment(ctx, toPersistenceAppointment(appt)); err != nil {
		return application.Appointment{}, err
	}
	return a.GetAppointment(ctx, appt.ID)
}

func (a *appointmentRepositoryAdapter) DeleteAppointment(ctx context.Context, id string) error {
	return a.repo.DeleteAppointment(ctx, id)
}

func (a *appointmentRepositoryAdapter) ListAppointments(ctx context.Context, filter application.AppointmentRepositoryFilter) ([]application.Appointment, error) {
	query := persistence.AppointmentFilter{RoomID: filter.RoomID, ClientID: filter.ClientID}
	if filter.Date != nil {
		query.Date = filter.Date.String()
	}
	stored, err := a.repo.ListAppointments(ctx, query)
	if err != nil {
		return nil, err
	}
	result := make([]application.Appointment, 0, len(stored))
	for _, model := range stored {
		appt, err := toApplicationAppointment(model)
		if err != nil {
			return nil, err
		}
		result = append(result, appt)
	}
	return result, nil
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationClient(model persistence.Client) application.Client {
	return application.Client{
		ID:             model.ID,
		IDNumber:       model.IDNumber,
		FullName:       model.FullName,
		Email:          cloneString(model.Email),
		Phone:          cloneString(model.Phone),
		EmergencyPhone: cloneString(model.EmergencyPhone),
		Address:        cloneString(model.Address),
		Age:            cloneInt(model.Age),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceClient(client application.Client) persistence.Client {
	return persistence.Client{
		ID:             client.ID,
		IDNumber:       client.IDNumber,
		FullName:       client.FullName,
		Email:          cloneString(client.Email),
		Phone:          cloneString(client.Phone),
		EmergencyPhone: cloneString(client.EmergencyPhone),
		Address:        cloneString(client.Address),
		Age:            cloneInt(client.Age),
		CreatedAt:      client.CreatedAt,
		UpdatedAt:      client.UpdatedAt,
	}
}

// toApplicationAppointment parses the stored date and time text back into a
// wall clock. Names are resolved later by the service.
func toApplicationAppointment(model persistence.Appointment) (application.Appointment, error) {
	date, err := scheduler.ParseDate(model.Date)
	if err != nil {
		return application.Appointment{}, fmt.Errorf("appointment %s: stored date: %w", model.ID, err)
	}
	at, err := scheduler.ParseTimeOfDay(model.Time)
	if err != nil {
		return application.Appointment{}, fmt.Errorf("appointment %s: stored time: %w", model.ID, err)
	}
	status, err := scheduler.ParseAttendanceStatus(model.AttendanceStatus)
	if err != nil {
		return application.Appointment{}, fmt.Errorf("appointment %s: stored status: %w", model.ID, err)
	}
	var comments string
	if model.Comments != nil {
		comments = *model.Comments
	}
	return application.Appointment{
		ID:               model.ID,
		ClientID:         model.ClientID,
		DateTime:         date.At(at),
		RoomID:           model.RoomID,
		AttendanceStatus: status,
		Comments:         comments,
		IsShared:         model.IsShared,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

func toPersistenceAppointment(appt application.Appointment) persistence.Appointment {
	var comments *string
	if appt.Comments != "" {
		value := appt.Comments
		comments = &value
	}
	return persistence.Appointment{
		ID:               appt.ID,
		ClientID:         appt.ClientID,
		Date:             appt.DateTime.Date.String(),
		Time:             appt.DateTime.Time.String(),
		RoomID:           appt.RoomID,
		AttendanceStatus: string(appt.AttendanceStatus),
		Comments:         comments,
		IsShared:         appt.IsShared,
		CreatedAt:        appt.CreatedAt,
		UpdatedAt:        appt.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
