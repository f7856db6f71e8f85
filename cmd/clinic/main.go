package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/config"
	"github.com/example/clinic-scheduler/internal/logging"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/persistence/memory"
	"github.com/example/clinic-scheduler/internal/persistence/sqlite"
	"github.com/example/clinic-scheduler/internal/persistence/sqlite/migration"
	"github.com/example/clinic-scheduler/internal/recurrence"
	"github.com/example/clinic-scheduler/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		stop()
		os.Exit(1)
	}
}

// run executes one command line and always releases the storage it opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	c := &cli{stdout: stdout, stderr: stderr, now: time.Now}
	defer func() {
		if cerr := c.shutdown(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	root := newRootCmd(c)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cli holds the global flags and the lazily opened runtime shared by commands.
type cli struct {
	configFile string
	memory     bool
	jsonOutput bool

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	rt *runtime
}

type runtime struct {
	cfg          config.Config
	logger       *slog.Logger
	store        *sqlite.Store
	rooms        *application.RoomService
	clients      *application.ClientService
	appointments *application.AppointmentService
	close        func() error
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "clinic",
		Short:         "Clinic appointment scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Path to a YAML config file (default ./clinic.yaml when present)")
	flags.BoolVar(&c.memory, "memory", false, "Use volatile in-memory storage instead of SQLite")
	flags.BoolVar(&c.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(c.migrateCmd())
	root.AddCommand(c.roomsCmd())
	root.AddCommand(c.clientsCmd())
	root.AddCommand(c.appointmentsCmd())
	return root
}

// runtime opens storage and wires the services on first use.
func (c *cli) runtime(ctx context.Context) (*runtime, error) {
	if c.rt != nil {
		return c.rt, nil
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, c.stderr)
	if err != nil {
		return nil, err
	}

	var (
		rooms        persistence.RoomRepository
		clients      persistence.ClientRepository
		appointments persistence.AppointmentRepository
		store        *sqlite.Store
		closer       func() error
	)
	if c.memory {
		storage := memory.New()
		rooms, clients, appointments = storage, storage, storage
		closer = storage.Close
	} else {
		store, err = sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		if err := store.Migrate(ctx, logger); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		rooms, clients, appointments = store.Rooms, store.Clients, store.Appointments
		closer = store.Close
	}

	roomRepo := newRoomRepositoryAdapter(rooms)
	clientRepo := newClientRepositoryAdapter(clients)
	appointmentRepo := newAppointmentRepositoryAdapter(appointments)

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		rooms:   application.NewRoomServiceWithLogger(roomRepo, uuid.NewString, c.now, logger),
		clients: application.NewClientServiceWithLogger(clientRepo, uuid.NewString, c.now, logger),
		appointments: application.NewAppointmentService(application.AppointmentServiceDeps{
			Appointments: appointmentRepo,
			Rooms:        roomRepo,
			Clients:      clientRepo,
			Recurrence:   recurrence.NewEngine(cfg.MaxSeriesOccurrences),
			IDGenerator:  uuid.NewString,
			Now:          c.now,
			Location:     cfg.Location,
			MaxBatchSize: cfg.MaxBatchSize,
			SlotOptions: scheduler.SlotOptions{
				SlotMinutes: cfg.SlotMinutes,
				StartHour:   cfg.DayStartHour,
				EndHour:     cfg.DayEndHour,
			},
			SnapshotTTL: cfg.SnapshotTTL,
			Export:      calendar.ExportOptions{SlotLength: time.Duration(cfg.SlotMinutes) * time.Minute},
			Logger:      logger,
		}),
		close: closer,
	}
	c.rt = rt

	// Volatile storage starts empty, so the catalog is the only source of rooms.
	if c.memory && cfg.RoomCatalog != "" {
		if _, err := c.syncCatalog(ctx, cfg.RoomCatalog); err != nil {
			_ = c.shutdown()
			return nil, err
		}
	}
	return rt, nil
}

func (c *cli) shutdown() error {
	if c.rt == nil || c.rt.close == nil {
		return nil
	}
	err := c.rt.close()
	c.rt = nil
	if err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

func (c *cli) syncCatalog(ctx context.Context, path string) (application.SyncCatalogResult, error) {
	entries, err := config.LoadRoomCatalog(path)
	if err != nil {
		return application.SyncCatalogResult{}, err
	}
	catalog := make([]application.CatalogRoom, len(entries))
	for i, entry := range entries {
		catalog[i] = application.CatalogRoom{ID: entry.ID, Name: entry.Name}
	}
	return c.rt.rooms.SyncCatalog(ctx, catalog)
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and show the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.memory {
				return fmt.Errorf("migrate needs SQLite storage; drop --memory")
			}
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			status, err := rt.store.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(migrationView{
				CurrentVersion: status.CurrentVersion,
				Applied:        len(status.Applied),
				Pending:        len(status.Pending),
			}, func(w io.Writer) {
				fmt.Fprintf(w, "schema version %s (%d applied, %d pending)\n", status.CurrentVersion, len(status.Applied), len(status.Pending))
			})
		},
	}
}
