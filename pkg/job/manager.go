package job

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
)

// Manager runs periodic tasks in process on cron schedules.
// A run is skipped while the previous run of the same task is still going.
type Manager struct {
	cron   *cron.Cron
	tasks  map[string]scheduleConfig
	logger *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewManager creates a new job manager with the given options.
// Every schedule is parsed up front; call Start() to begin running tasks.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := &config{location: time.Local}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}

	cl := cronLogger{cfg.logger}
	c := cron.New(
		cron.WithLocation(cfg.location),
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	m := &Manager{
		cron:   c,
		tasks:  make(map[string]scheduleConfig, len(cfg.schedules)),
		logger: cfg.logger,
		ctx:    context.Background(),
	}

	for _, sched := range cfg.schedules {
		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: %v", ErrInvalidSchedule, sched.schedule, sched.name, err)
		}
		m.tasks[sched.name] = sched

		name := sched.name
		job := cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
			_ = m.Run(m.runContext(), name)
		}))
		c.Schedule(schedule, job)
	}

	return m, nil
}

// Tasks returns the registered task names, sorted.
func (m *Manager) Tasks() []string {
	return slices.Sorted(maps.Keys(m.tasks))
}

// Start begins running tasks on their schedules.
// Tasks receive a context derived from ctx that is cancelled by Stop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	m.cron.Start()
	m.started = true

	m.logger.Info("job manager started", slog.Int("tasks", len(m.tasks)))
	return nil
}

// Stop stops scheduling and waits for running tasks until ctx is done.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrNotStarted
	}
	done := m.cron.Stop()
	cancel := m.cancel
	m.started = false
	m.mu.Unlock()

	defer cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return fmt.Errorf("job: stop: %w", ctx.Err())
	}

	m.logger.Info("job manager stopped")
	return nil
}

// Run executes a registered task once, synchronously.
func (m *Manager) Run(ctx context.Context, name string) error {
	task, ok := m.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	start := time.Now()
	m.logger.DebugContext(ctx, "executing task", slog.String("task", name))

	if err := task.handler(ctx); err != nil {
		m.logger.ErrorContext(ctx, "task failed",
			slog.String("task", name),
			slog.Any("error", err),
		)
		return err
	}

	m.logger.DebugContext(ctx, "task completed",
		slog.String("task", name),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func (m *Manager) runContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

// Shutdown returns a shutdown function for the job manager.
func (m *Manager) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Stop(ctx)
	}
}

// StartFunc returns a startup function for the job manager.
func (m *Manager) StartFunc() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Start(ctx)
	}
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func parseCronSchedule(expr string) (cron.Schedule, error) {
	return parser.Parse(expr)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
