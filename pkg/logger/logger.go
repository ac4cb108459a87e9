package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures the application logger.
type Config struct {
	Output io.Writer    `yaml:"-"`
	Level  string       `yaml:"level"`  // debug, info, warn, error; defaults to info
	Format string       `yaml:"format"` // json or text; defaults to json
	Sentry SentryConfig `yaml:"sentry"`
}

// New creates a logger writing to cfg.Output (stdout by default).
// When cfg.Sentry.DSN is set, records are also forwarded to Sentry.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(out, opts)
	} else {
		base = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.DSN != "" {
		if sh, ok := newSentryHandler(cfg.Sentry, base); ok {
			base = newMultiHandler(base, sh)
		}
	}

	return slog.New(NewLogHandlerDecorator(base, extractors...))
}

// ParseLevel maps a level name to slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
