// Package job runs periodic maintenance tasks in process on cron schedules.
//
// Tasks are defined as structs with Name(), Schedule() and Handle() methods.
// No interface import is required; the package uses structural typing:
//
//	type SweepUploads struct {
//	    lib    *library.Library
//	    maxAge time.Duration
//	}
//
//	func (t *SweepUploads) Name() string     { return "sweep_uploads" }
//	func (t *SweepUploads) Schedule() string { return "0 3 * * *" } // daily at 03:00
//
//	func (t *SweepUploads) Handle(ctx context.Context) error {
//	    _, err := t.lib.Sweep(ctx, t.maxAge)
//	    return err
//	}
//
// # Manager
//
//	m, err := job.NewManager(
//	    job.WithScheduledTask(&SweepUploads{lib: lib, maxAge: 720 * time.Hour}),
//	    job.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//
//	app := kindle.New(
//	    kindle.WithStartupHook(m.StartFunc()),
//	    kindle.WithShutdownHook(m.Shutdown()),
//	)
//
// Schedules use five fields (minute hour day month weekday) or descriptors
// such as "@hourly". Invalid schedules make NewManager fail with
// ErrInvalidSchedule. Run executes a task immediately, outside its schedule.
//
// There is no persistence or retry: a failed run is logged and the task runs
// again at its next scheduled time.
package job
