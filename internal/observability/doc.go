// Package observability provides the bot's observability infrastructure.
//
// Subpackages:
//   - logging: structured logging with slog and request-ID context
//
// Prometheus metrics live next to the code they measure (composer,
// publisher, worker) rather than in a central registry; this package only
// hosts cross-cutting pieces.
//
// Example usage:
//
//	import "github.com/DepSpiel/telegram-pidrgpt/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("bot started")
//	}
package observability
