package jobs

import (
	"context"
	"sync/atomic"

	"cmr/internal/core/domain/model/shipment"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// ActiveShipmentLister loads every shipment that can still change.
	ActiveShipmentLister interface {
		GetAllActive(ctx context.Context) ([]*shipment.Shipment, error)
	}

	// SnapshotWarmer writes the snapshot of a loaded shipment into the cache.
	SnapshotWarmer interface {
		Warm(ctx context.Context, s *shipment.Shipment) error
	}
)

// SnapshotRefreshJob periodically re-reads the active shipments and re-warms
// their delivery snapshots, so list pages hit the cache after a TTL expiry.
type SnapshotRefreshJob struct {
	lister      ActiveShipmentLister
	warmer      SnapshotWarmer
	concurrency int
	cron        *cron.Cron
	logger      *zap.Logger
}

func NewSnapshotRefreshJob(
	lister ActiveShipmentLister,
	warmer SnapshotWarmer,
	concurrency int,
	logger *zap.Logger,
) *SnapshotRefreshJob {
	if concurrency <= 0 {
		concurrency = 1
	}
	logger = logger.With(zap.String("component", "snapshot_refresh_job"))
	return &SnapshotRefreshJob{
		lister:      lister,
		warmer:      warmer,
		concurrency: concurrency,
		cron:        newCron(logger),
		logger:      logger,
	}
}

// Run performs one refresh pass and returns how many snapshots were written.
// A failing shipment is logged and skipped.
func (j *SnapshotRefreshJob) Run(ctx context.Context) (int, error) {
	active, err := j.lister.GetAllActive(ctx)
	if err != nil {
		return 0, err
	}

	var warmed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for _, s := range active {
		g.Go(func() error {
			if err := j.warmer.Warm(gctx, s); err != nil {
				j.logger.Warn("failed to refresh snapshot",
					zap.String("shipment_id", s.ID().String()),
					zap.Error(err),
				)
				return nil
			}
			warmed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(warmed.Load()), nil
}

// Start schedules Run with a six-field cron expression.
func (j *SnapshotRefreshJob) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		ctx := context.Background()

		n, err := j.Run(ctx)
		if err != nil {
			j.logger.Error("snapshot refresh failed", zap.Error(err))
			return
		}
		j.logger.Debug("snapshots refreshed", zap.Int("count", n))
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("snapshot refresh job started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running pass to finish.
func (j *SnapshotRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("snapshot refresh job stopped")
}
