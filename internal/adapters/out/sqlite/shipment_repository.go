package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// ShipmentRepository implements ports.ShipmentRepository on SQLite.
type ShipmentRepository struct {
	q       querier
	tracker aggregateTracker
}

func NewShipmentRepository(q querier, tracker aggregateTracker) *ShipmentRepository {
	return &ShipmentRepository{q: q, tracker: tracker}
}

func (r *ShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	err := r.atomically(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO shipments (id, status, current_step, service_provider, delivery_address, completed, version)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			aggregate.ID().String(),
			int(aggregate.Status()),
			aggregate.CurrentStep(),
			aggregate.ServiceProvider(),
			aggregate.DeliveryAddress(),
			aggregate.IsCompleted(),
			aggregate.Version(),
		); err != nil {
			return fmt.Errorf("insert shipment: %w", err)
		}
		return writeChildren(ctx, q, aggregate)
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves the shipment when the stored version equals expectedVersion.
// Milestone and audit rows are append-only and inserted with ON CONFLICT DO NOTHING.
func (r *ShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment, expectedVersion int64) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	id := aggregate.ID()
	err := r.atomically(ctx, func(q querier) error {
		result, err := q.ExecContext(ctx, `
			UPDATE shipments
			SET status = ?, current_step = ?, service_provider = ?, delivery_address = ?, completed = ?, version = ?
			WHERE id = ? AND version = ?
		`,
			int(aggregate.Status()),
			aggregate.CurrentStep(),
			aggregate.ServiceProvider(),
			aggregate.DeliveryAddress(),
			aggregate.IsCompleted(),
			aggregate.Version(),
			id.String(),
			expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("update shipment: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return missingOrConflict(ctx, q, id, expectedVersion)
		}

		return writeChildren(ctx, q, aggregate)
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(id, aggregate)
	return nil
}

func (r *ShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return load(ctx, r.q, id)
}

func (r *ShipmentRepository) GetAllActive(ctx context.Context) ([]*shipment.Shipment, error) {
	ids, err := selectIDs(ctx, r.q, `
		SELECT id FROM shipments
		WHERE completed = 0 AND status <> ?
		ORDER BY id
	`, int(shipment.ExceptionClosed))
	if err != nil {
		return nil, err
	}
	return loadAll(ctx, r.q, ids)
}

func (r *ShipmentRepository) GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error) {
	ids, err := selectIDs(ctx, r.q, `
		SELECT shipment_id FROM shipment_exceptions
		WHERE status IN (?, ?) AND last_activity_at < ?
		ORDER BY last_activity_at
	`, int(shipment.Reported), int(shipment.Following), formatTime(before))
	if err != nil {
		return nil, err
	}
	return loadAll(ctx, r.q, ids)
}

// atomically runs fn in the open transaction, or in a new one when the repository
// was created outside a unit of work.
func (r *ShipmentRepository) atomically(ctx context.Context, fn func(q querier) error) error {
	db, ok := r.q.(*sql.DB)
	if !ok {
		return fn(r.q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeChildren(ctx context.Context, q querier, aggregate *shipment.Shipment) error {
	id := aggregate.ID().String()

	ledger := aggregate.Ledger()
	for _, slot := range shipment.AllMilestoneSlots() {
		m := ledger.Milestone(slot)
		if !m.IsRecorded() {
			break
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO shipment_milestones (shipment_id, slot, at, note)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(shipment_id, slot) DO NOTHING
		`, id, int(slot), formatTime(m.At()), m.Note()); err != nil {
			return fmt.Errorf("insert milestone: %w", err)
		}
	}

	exception := aggregate.Exception()
	if exception == nil {
		return nil
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO shipment_exceptions (shipment_id, status, note, reported_at, last_activity_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(shipment_id) DO UPDATE SET
			status = excluded.status,
			note = excluded.note,
			reported_at = excluded.reported_at,
			last_activity_at = excluded.last_activity_at
	`,
		id,
		int(exception.Status()),
		exception.Note(),
		formatTime(exception.ReportedAt()),
		formatTime(exception.LastActivityAt()),
	); err != nil {
		return fmt.Errorf("upsert exception: %w", err)
	}

	for seq, record := range exception.Records() {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO shipment_exception_records (shipment_id, seq, action, note, actor, at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(shipment_id, seq) DO NOTHING
		`, id, seq, int(record.Action()), record.Note(), record.Actor(), formatTime(record.At())); err != nil {
			return fmt.Errorf("insert exception record: %w", err)
		}
	}

	return nil
}

func missingOrConflict(ctx context.Context, q querier, id kernel.UUID, expectedVersion int64) error {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM shipments WHERE id = ?`, id.String()).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("shipment", id.String())
	}
	return errs.NewVersionConflictError("shipment", id.String(), expectedVersion)
}

// selectIDs reads every id before returning so the single pool connection is
// free for the loads that follow.
func selectIDs(ctx context.Context, q querier, query string, args ...any) ([]kernel.UUID, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []kernel.UUID
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadAll(ctx context.Context, q querier, ids []kernel.UUID) ([]*shipment.Shipment, error) {
	shipments := make([]*shipment.Shipment, 0, len(ids))
	for _, id := range ids {
		s, err := load(ctx, q, id)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}

func load(ctx context.Context, q querier, id kernel.UUID) (*shipment.Shipment, error) {
	var (
		pickup    shipment.PickupDetails
		completed bool
		version   int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT service_provider, delivery_address, completed, version
		FROM shipments WHERE id = ?
	`, id.String()).Scan(&pickup.ServiceProvider, &pickup.DeliveryAddress, &completed, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("shipment", id.String())
		}
		return nil, err
	}

	ledger, err := loadLedger(ctx, q, id)
	if err != nil {
		return nil, err
	}

	exception, err := loadException(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return shipment.RestoreShipment(id, ledger, pickup, exception, completed, version)
}

func loadLedger(ctx context.Context, q querier, id kernel.UUID) (shipment.Ledger, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT slot, at, note FROM shipment_milestones WHERE shipment_id = ? ORDER BY slot
	`, id.String())
	if err != nil {
		return shipment.Ledger{}, err
	}
	defer rows.Close()

	var milestones [shipment.MilestoneCount]shipment.Milestone
	for rows.Next() {
		var (
			slot     int
			at, note string
		)
		if err = rows.Scan(&slot, &at, &note); err != nil {
			return shipment.Ledger{}, err
		}
		if err = shipment.MilestoneSlot(slot).Validate(); err != nil {
			return shipment.Ledger{}, err
		}
		ts, err := parseTime(at)
		if err != nil {
			return shipment.Ledger{}, err
		}
		milestones[slot-1] = shipment.NewMilestone(ts, note)
	}
	if err = rows.Err(); err != nil {
		return shipment.Ledger{}, err
	}

	return shipment.RestoreLedger(milestones)
}

func loadException(ctx context.Context, q querier, id kernel.UUID) (*shipment.ExceptionState, error) {
	var (
		status     int
		note       string
		reportedAt string
	)
	err := q.QueryRowContext(ctx, `
		SELECT status, note, reported_at FROM shipment_exceptions WHERE shipment_id = ?
	`, id.String()).Scan(&status, &note, &reportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	reported, err := parseTime(reportedAt)
	if err != nil {
		return nil, err
	}

	records, err := loadRecords(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return shipment.RestoreExceptionState(shipment.ExceptionStatus(status), note, reported, records)
}

func loadRecords(ctx context.Context, q querier, id kernel.UUID) ([]shipment.ExceptionRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT action, note, actor, at FROM shipment_exception_records WHERE shipment_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []shipment.ExceptionRecord
	for rows.Next() {
		var (
			action          int
			note, actor, at string
		)
		if err = rows.Scan(&action, &note, &actor, &at); err != nil {
			return nil, err
		}
		ts, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		record, err := shipment.NewExceptionRecord(shipment.ExceptionAction(action), note, actor, ts)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause("stored timestamp", err)
	}
	return t, nil
}
