package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Healthcheck(t *testing.T) {
	t.Parallel()

	var nilManager *Manager
	require.ErrorIs(t, nilManager.Healthcheck()(context.Background()), ErrHealthcheckFailed)

	m, err := NewManager(WithFunc("sweep_uploads", "@daily", func(context.Context) error { return nil }))
	require.NoError(t, err)
	check := m.Healthcheck()

	err = check(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Contains(t, err.Error(), "1 tasks")

	require.NoError(t, m.Start(context.Background()))
	assert.NoError(t, check(context.Background()))

	require.NoError(t, m.Stop(context.Background()))
	assert.ErrorIs(t, check(context.Background()), ErrHealthcheckFailed)
}
