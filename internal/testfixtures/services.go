package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/recurrence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms       application.RoomRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	return application.NewRoomServiceWithLogger(deps.Rooms, f.idGen(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// ClientServiceDeps captures dependencies for constructing a client service.
type ClientServiceDeps struct {
	Clients     application.ClientRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewClientService builds a client service using the supplied dependencies.
func (f *ServiceFactory) NewClientService(deps ClientServiceDeps) *application.ClientService {
	return application.NewClientServiceWithLogger(deps.Clients, f.idGen(deps.IDGenerator), f.now(deps.Now), deps.Logger)
}

// AppointmentServiceDeps captures dependencies for constructing an appointment
// service. Zero limits fall back to the production defaults.
type AppointmentServiceDeps struct {
	Appointments   application.AppointmentRepository
	Rooms          application.RoomCatalog
	Clients        application.ClientDirectory
	MaxOccurrences int
	MaxBatchSize   int
	SlotOptions    scheduler.SlotOptions
	SnapshotTTL    time.Duration
	IDGenerator    func() string
	Now            func() time.Time
	Logger         *slog.Logger
}

// NewAppointmentService builds an appointment service in UTC using the
// supplied dependencies combined with the factory defaults.
func (f *ServiceFactory) NewAppointmentService(deps AppointmentServiceDeps) *application.AppointmentService {
	slots := deps.SlotOptions
	if slots.SlotMinutes == 0 {
		slots = scheduler.SlotOptions{SlotMinutes: 30, StartHour: 8, EndHour: 18}
	}
	return application.NewAppointmentService(application.AppointmentServiceDeps{
		Appointments: deps.Appointments,
		Rooms:        deps.Rooms,
		Clients:      deps.Clients,
		Recurrence:   recurrence.NewEngine(deps.MaxOccurrences),
		IDGenerator:  f.idGen(deps.IDGenerator),
		Now:          f.now(deps.Now),
		Location:     time.UTC,
		MaxBatchSize: deps.MaxBatchSize,
		SlotOptions:  slots,
		SnapshotTTL:  deps.SnapshotTTL,
		Logger:       deps.Logger,
	})
}

func (f *ServiceFactory) idGen(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) now(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}
