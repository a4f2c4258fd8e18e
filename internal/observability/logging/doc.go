// Package logging builds the bot's structured loggers (log/slog, JSON
// output) and carries the request ID from context into log attributes.
//
// NewLogger is for the daemon (stdout); NewCLILogger is for one-shot
// commands and writes to stderr so stdout stays free for command output.
// Levels come from the LOG_LEVEL environment variable.
//
// Example usage:
//
//	import "github.com/DepSpiel/telegram-pidrgpt/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    slog.SetDefault(logger)
//	    logger.Info("bot started", slog.String("version", "1.0"))
//	}
//
//	func composeDigest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("composing digest")
//	}
package logging
