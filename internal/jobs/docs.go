// Package jobs provides scheduled background tasks for the CMR service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with a
// leading seconds field). A tick is skipped while the previous run of the same
// job is still in progress, and a panic inside a run is recovered and logged.
//
// # Available Jobs
//
// 1. SnapshotRefreshJob - re-reads active shipments and re-warms their delivery
// snapshots in the cache with bounded concurrency
// 2. StaleExceptionJob - logs a warning for every Reported or Following exception
// whose last audit record is older than the configured threshold
//
// # Usage
//
//	manager := jobs.NewJobManager(refreshJob, staleJob, jobs.Schedules{
//		SnapshotRefresh: "0 */5 * * * *",
//		StaleException:  "0 0 * * * *",
//	}, logger)
//
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
// A failing shipment never aborts a refresh pass. A failed scan or listing is
// logged and retried on the next tick.
package jobs
