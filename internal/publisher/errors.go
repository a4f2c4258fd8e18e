package publisher

import "errors"

// Sentinel errors for publish operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidDigest indicates that the digest is nil or carries no caption.
	ErrInvalidDigest = errors.New("invalid digest data")

	// ErrPublishDropped indicates that a publish was dropped due to worker pool
	// saturation or timeout waiting for a worker slot.
	// This is a non-critical error used for observability.
	ErrPublishDropped = errors.New("publish dropped due to pool saturation")

	// ErrCircuitBreakerOpen indicates that the channel's circuit breaker is open
	// and sends are being rejected to prevent continuous failures.
	// The circuit breaker will automatically close after the timeout period.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")
)
