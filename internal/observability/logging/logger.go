package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/DepSpiel/telegram-pidrgpt/internal/requestid"
)

// NewLogger creates the daemon logger: JSON output on stdout.
// The log level is controlled via the LOG_LEVEL environment variable
// (debug enables debug level and source locations; anything else is info).
func NewLogger() *slog.Logger {
	return newJSONLogger(os.Stdout)
}

// NewCLILogger creates a logger for one-shot commands: JSON output on
// stderr, so stdout stays free for the command's own output.
func NewCLILogger() *slog.Logger {
	return newJSONLogger(os.Stderr)
}

func newJSONLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
}

// WithRequestID returns a logger that tags every entry with the request ID
// from the context. Without a request ID the logger is returned unchanged.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With(slog.String("request_id", reqID))
}
