package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiHandler_FansOut(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("svc", "kt")

	log.Info("info line")
	log.Error("error line")

	require.Contains(t, a.String(), "info line")
	require.Contains(t, a.String(), "error line")
	require.NotContains(t, b.String(), "info line")
	require.Contains(t, b.String(), "error line")
	require.Contains(t, b.String(), "svc=kt")
}
