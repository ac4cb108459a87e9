package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
)

type runIDKey struct{}

// WithRunID stores a run id in ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run id stored in ctx, if any.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// RunIDExtractor adds run_id to log records emitted during a run.
func RunIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RunID(ctx); id != "" {
			return slog.String("run_id", id), true
		}
		return slog.Attr{}, false
	}
}

func newRunID() string {
	return uuid.NewString()
}
