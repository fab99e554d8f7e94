package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"cmr/internal/adapters/out/tracked"
	"cmr/internal/core/ports"

	"go.uber.org/zap"
)

// ErrNoTransaction is returned by Commit and Rollback without a preceding Begin.
var ErrNoTransaction = errors.New("no transaction in progress")

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store     *Store
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUnitOfWorkFactory creates the factory. publisher may be nil.
func NewUnitOfWorkFactory(store *Store, publisher ports.EventPublisher, logger *zap.Logger) *UnitOfWorkFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitOfWorkFactory{
		store:     store,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "sqlite_unit_of_work")),
	}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{
		db:        f.store.db,
		publisher: f.publisher,
		logger:    f.logger,
	}
}

// UnitOfWork wraps one *sql.Tx. While a transaction is open it holds the only
// pool connection, so every repository call must go through ShipmentRepository.
type UnitOfWork struct {
	tracked.Aggregates

	db        *sql.DB
	tx        *sql.Tx
	publisher ports.EventPublisher
	logger    *zap.Logger
}

func (uow *UnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	uow.tx = tx
	return nil
}

func (uow *UnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return ErrNoTransaction
	}

	err := uow.tx.Commit()
	uow.tx = nil
	if err != nil {
		uow.Reset()
		return err
	}

	uow.Publish(ctx, uow.publisher, uow.logger)
	return nil
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return ErrNoTransaction
	}

	err := uow.tx.Rollback()
	uow.tx = nil
	uow.Reset()
	return err
}

func (uow *UnitOfWork) ShipmentRepository() ports.ShipmentRepository {
	var q querier = uow.db
	if uow.tx != nil {
		q = uow.tx
	}
	return NewShipmentRepository(q, uow)
}
