// Package publisher dispatches composed digests to delivery channels.
// It implements fan-out publishing with per-channel rate limiting, circuit
// breakers, and observability.
package publisher

import (
	"context"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
)

// Channel represents a digest delivery channel (Telegram, dry-run, etc.).
// Each channel implementation handles its own rate limiting, retries, and
// error handling.
//
// Retry Policy Contract:
//   - Transient failures (5xx, network errors): Retry with exponential backoff
//   - Rate limits (429): Retry with exponential backoff (max 3 attempts)
//   - Client errors (4xx except 429): No retry
//   - Context timeout: No retry
//
// Thread Safety:
//   - All methods must be safe for concurrent use by multiple goroutines
//
// Context Handling:
//   - Implementations must respect context cancellation and timeout
//   - request_id should be extracted from context for logging
type Channel interface {
	// Name returns the channel identifier (lowercase, alphanumeric).
	// This is used for logging, metrics, and health check endpoints.
	Name() string

	// IsEnabled returns true if this channel is enabled via configuration.
	// Disabled channels will be skipped during dispatching.
	IsEnabled() bool

	// Send delivers a composed digest to this channel.
	//
	// Implementations must:
	//   - Respect context cancellation/timeout
	//   - Apply rate limiting
	//   - Retry transient failures according to the retry policy
	//   - Log all attempts with request_id from context
	//
	// Returns:
	//   - error: Non-nil if delivery failed after all retries
	//     - ErrChannelDisabled: If Send() called on a disabled channel
	//     - ErrInvalidDigest: If the digest is nil or has no caption
	//     - ErrCircuitBreakerOpen: If the circuit breaker is rejecting sends
	//     - Network/API errors: Wrapped with context
	Send(ctx context.Context, digest *entity.Digest) error
}
