package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// Schedules holds the cron expressions of the jobs. An empty expression
// disables that job.
type Schedules struct {
	SnapshotRefresh string
	StaleException  string
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	snapshotRefreshJob *SnapshotRefreshJob
	staleExceptionJob  *StaleExceptionJob
	schedules          Schedules
	started            []func()
	logger             *zap.Logger
}

// NewJobManager creates a job manager. A nil job is never started.
func NewJobManager(
	snapshotRefreshJob *SnapshotRefreshJob,
	staleExceptionJob *StaleExceptionJob,
	schedules Schedules,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		snapshotRefreshJob: snapshotRefreshJob,
		staleExceptionJob:  staleExceptionJob,
		schedules:          schedules,
		logger:             logger.With(zap.String("component", "job_manager")),
	}
}

// StartAll starts every enabled job. If one fails to start, the ones already
// running are stopped.
func (jm *JobManager) StartAll() error {
	if jm.snapshotRefreshJob != nil && jm.schedules.SnapshotRefresh != "" {
		if err := jm.snapshotRefreshJob.Start(jm.schedules.SnapshotRefresh); err != nil {
			return fmt.Errorf("failed to start snapshot refresh job: %w", err)
		}
		jm.started = append(jm.started, jm.snapshotRefreshJob.Stop)
	} else {
		jm.logger.Info("snapshot refresh job disabled")
	}

	if jm.staleExceptionJob != nil && jm.schedules.StaleException != "" {
		if err := jm.staleExceptionJob.Start(jm.schedules.StaleException); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start stale exception job: %w", err)
		}
		jm.started = append(jm.started, jm.staleExceptionJob.Stop)
	} else {
		jm.logger.Info("stale exception job disabled")
	}

	return nil
}

// StopAll stops the running jobs in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.started[i]()
	}
	jm.started = nil
}
