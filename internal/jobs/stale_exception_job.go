package jobs

import (
	"context"
	"time"

	"cmr/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaleExceptionJob raises an alert for every live exception nobody has touched
// for longer than the configured threshold.
type StaleExceptionJob struct {
	handler queries.GetStaleExceptionsQueryHandler
	after   time.Duration
	now     func() time.Time
	cron    *cron.Cron
	logger  *zap.Logger
}

func NewStaleExceptionJob(
	handler queries.GetStaleExceptionsQueryHandler,
	after time.Duration,
	logger *zap.Logger,
) *StaleExceptionJob {
	logger = logger.With(zap.String("component", "stale_exception_job"))
	return &StaleExceptionJob{
		handler: handler,
		after:   after,
		now:     time.Now,
		cron:    newCron(logger),
		logger:  logger,
	}
}

// Run performs one scan and returns the number of alerts raised.
func (j *StaleExceptionJob) Run(ctx context.Context) (int, error) {
	query, err := queries.NewGetStaleExceptionsQuery(j.now().UTC().Add(-j.after))
	if err != nil {
		return 0, err
	}

	stale, err := j.handler.Handle(ctx, query)
	if err != nil {
		return 0, err
	}

	for _, e := range stale {
		j.logger.Warn("stale exception",
			zap.String("shipment_id", e.ShipmentID.String()),
			zap.String("exception_status", e.ExceptionStatus),
			zap.String("note", e.Note),
			zap.Time("reported_at", e.ReportedAt),
			zap.Time("last_activity_at", e.LastActivityAt),
		)
	}
	return len(stale), nil
}

// Start schedules Run with a six-field cron expression.
func (j *StaleExceptionJob) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.logger.Error("stale exception scan failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("stale exception job started",
		zap.String("schedule", schedule),
		zap.Duration("threshold", j.after),
	)
	return nil
}

// Stop waits for a running scan to finish.
func (j *StaleExceptionJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("stale exception job stopped")
}
