package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	httpin "cmr/internal/adapters/in/http"
	"cmr/internal/adapters/out/eventbus"
	"cmr/internal/adapters/out/postgres"
	"cmr/internal/adapters/out/redis"
	"cmr/internal/adapters/out/sqlite"
	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/application/usecases/queries"
	"cmr/internal/core/ports"
	"cmr/internal/jobs"
	"cmr/internal/pkg/lock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const eventForwardTimeout = 5 * time.Second

// CompositionRoot owns the infrastructure of one process and builds the use
// case handlers on top of it.
type CompositionRoot struct {
	configs Config
	logger  *zap.Logger

	gormDB      *gorm.DB
	sqliteStore *sqlite.Store

	uowFactory ports.UnitOfWorkFactory
	cache      ports.SnapshotCache
	bus        *eventbus.Bus
	locks      *lock.MutexMap

	closers []func() error
}

// NewCompositionRoot connects to the configured store and, when REDIS_URL is
// set, to Redis. Status changes always reach the alert logger; with Redis they
// are also published on the configured channel.
func NewCompositionRoot(ctx context.Context, configs Config, logger *zap.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		configs: configs,
		logger:  logger,
		locks:   lock.NewMutexMap(),
	}

	c.bus = eventbus.NewBus(configs.EventBufferSize, logger)
	c.bus.Subscribe("alerts", eventbus.AlertLogger(logger))

	if err := c.openStore(); err != nil {
		_ = c.Close()
		return nil, err
	}

	if configs.Redis.URL != "" {
		client, err := redis.NewClient(ctx, configs.Redis.URL)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.closers = append(c.closers, client.Close)

		c.cache = redis.NewSnapshotCache(client, configs.Redis.SnapshotTTL)
		c.bus.Subscribe("redis", eventbus.Forwarder(
			redis.NewEventPublisher(client, configs.Redis.EventChannel), eventForwardTimeout, logger))
	}

	return c, nil
}

func (c *CompositionRoot) openStore() error {
	switch c.configs.Store.Driver {
	case DriverSQLite:
		store, err := sqlite.Open(c.configs.Store.SQLitePath)
		if err != nil {
			return err
		}
		c.sqliteStore = store
		c.closers = append(c.closers, store.Close)
		c.uowFactory = sqlite.NewUnitOfWorkFactory(store, c.bus, c.logger)
	case DriverPostgres:
		db, err := postgres.Open(c.configs.Store.PostgresDSN())
		if err != nil {
			return err
		}
		c.gormDB = db
		c.closers = append(c.closers, func() error { return postgres.Close(db) })
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db, c.bus, c.logger)
	default:
		return fmt.Errorf("unknown store driver %q", c.configs.Store.Driver)
	}
	return nil
}

// Migrate creates the schema. SQLite applies its schema on open.
func (c *CompositionRoot) Migrate() error {
	if c.gormDB != nil {
		return postgres.Migrate(c.gormDB)
	}
	return nil
}

// Ping checks the store.
func (c *CompositionRoot) Ping(ctx context.Context) error {
	if c.gormDB != nil {
		return postgres.Ping(ctx, c.gormDB)
	}
	return c.sqliteStore.Ping(ctx)
}

// Close drains the event bus and then releases everything else in reverse order
// of acquisition.
func (c *CompositionRoot) Close() error {
	c.bus.Close()

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *CompositionRoot) shipmentUoWFactory() commands.ShipmentUoWFactory {
	return FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) shipmentReader() queries.ShipmentReader {
	return c.uowFactory.Create().ShipmentRepository()
}

func (c *CompositionRoot) CreateRegisterShipmentCommandHandler() commands.RegisterShipmentCommandHandler {
	return commands.NewRegisterShipmentCommandHandler(c.shipmentUoWFactory(), c.locks)
}

func (c *CompositionRoot) CreateRecordMilestoneCommandHandler() commands.RecordMilestoneCommandHandler {
	return commands.NewRecordMilestoneCommandHandler(c.shipmentUoWFactory(), c.locks, c.cache, c.logger)
}

func (c *CompositionRoot) CreateApplyExceptionActionCommandHandler() commands.ApplyExceptionActionCommandHandler {
	return commands.NewApplyExceptionActionCommandHandler(c.shipmentUoWFactory(), c.locks, c.cache, c.logger)
}

func (c *CompositionRoot) CreateMarkCompletedCommandHandler() commands.MarkCompletedCommandHandler {
	return commands.NewMarkCompletedCommandHandler(c.shipmentUoWFactory(), c.locks, c.cache, c.logger)
}

func (c *CompositionRoot) CreateGetDeliverySnapshotQueryHandler() queries.GetDeliverySnapshotQueryHandler {
	return queries.NewGetDeliverySnapshotQueryHandler(c.shipmentReader(), c.cache, c.logger)
}

func (c *CompositionRoot) CreateGetDeliverySnapshotsQueryHandler() queries.GetDeliverySnapshotsQueryHandler {
	return queries.NewGetDeliverySnapshotsQueryHandler(
		c.CreateGetDeliverySnapshotQueryHandler(), c.configs.BulkConcurrency)
}

func (c *CompositionRoot) CreateGetActiveShipmentsQueryHandler() queries.GetActiveShipmentsQueryHandler {
	return queries.NewGetActiveShipmentsQueryHandler(c.shipmentReader())
}

func (c *CompositionRoot) CreateGetStaleExceptionsQueryHandler() queries.GetStaleExceptionsQueryHandler {
	return queries.NewGetStaleExceptionsQueryHandler(c.shipmentReader())
}

// CreateHTTPServer wires every handler into the HTTP adapter.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		RegisterShipment:     c.CreateRegisterShipmentCommandHandler(),
		RecordMilestone:      c.CreateRecordMilestoneCommandHandler(),
		ApplyExceptionAction: c.CreateApplyExceptionActionCommandHandler(),
		MarkCompleted:        c.CreateMarkCompletedCommandHandler(),
		GetDeliverySnapshot:  c.CreateGetDeliverySnapshotQueryHandler(),
		GetDeliverySnapshots: c.CreateGetDeliverySnapshotsQueryHandler(),
		GetActiveShipments:   c.CreateGetActiveShipmentsQueryHandler(),
	}, c.Ping, c.logger)
}

// CreateJobManager builds the scheduled jobs. Snapshot refresh is disabled
// without a cache since there is nothing to warm.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	schedules := jobs.Schedules{
		SnapshotRefresh: c.configs.Jobs.SnapshotRefreshSchedule,
		StaleException:  c.configs.Jobs.StaleExceptionSchedule,
	}
	if c.cache == nil {
		schedules.SnapshotRefresh = ""
	}

	refresh := jobs.NewSnapshotRefreshJob(
		c.shipmentReader(),
		c.CreateGetDeliverySnapshotQueryHandler(),
		c.configs.BulkConcurrency,
		c.logger,
	)
	stale := jobs.NewStaleExceptionJob(
		c.CreateGetStaleExceptionsQueryHandler(),
		c.configs.Jobs.StaleExceptionAfter,
		c.logger,
	)
	return jobs.NewJobManager(refresh, stale, schedules, c.logger)
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}
