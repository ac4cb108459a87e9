package job

import (
	"context"
	"errors"
	"fmt"
)

// ErrHealthcheckFailed is returned when the scheduler is not running.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

// Healthcheck returns a readiness check that passes while the manager is
// started. Compatible with health.CheckFunc.
func (m *Manager) Healthcheck() func(context.Context) error {
	return func(context.Context) error {
		if m == nil {
			return fmt.Errorf("%w: no manager", ErrHealthcheckFailed)
		}

		m.mu.Lock()
		started := m.started
		m.mu.Unlock()

		if !started {
			return fmt.Errorf("%w: %w with %d tasks", ErrHealthcheckFailed, ErrNotStarted, len(m.tasks))
		}
		return nil
	}
}
