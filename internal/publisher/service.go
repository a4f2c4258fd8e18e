package publisher

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/observability/logging"
	"github.com/DepSpiel/telegram-pidrgpt/internal/requestid"
)

const (
	// workerSlotTimeout bounds the wait for a free worker slot.
	workerSlotTimeout = 5 * time.Second

	// publishTimeout bounds one channel's whole publish, including rate
	// limiter waits and retries across every configured chat.
	publishTimeout = 2 * time.Minute
)

// Service handles digest dispatching to multiple delivery channels.
// It orchestrates publishing asynchronously without blocking the caller.
type Service interface {
	// PublishDigest dispatches a composed digest to all enabled channels.
	//
	// This method is non-blocking and returns immediately. Deliveries run
	// in background goroutines, and failures are logged but do not
	// propagate errors to the caller.
	//
	// Parameters:
	//   - ctx: Context carrying the request ID (not propagated to goroutines)
	//   - digest: The digest to publish (must not be nil)
	//
	// Returns:
	//   - nil (always succeeds, errors are handled internally)
	PublishDigest(ctx context.Context, digest *entity.Digest) error

	// GetChannelHealth returns the health status of all delivery channels.
	//
	// This method provides visibility into circuit breaker states for
	// monitoring and health check endpoints. The returned data is safe for
	// concurrent access.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown gracefully stops the publisher, waiting for in-flight
	// deliveries to complete or the context to expire.
	//
	// Parameters:
	//   - ctx: Context with timeout for shutdown (recommended: 30s)
	//
	// Returns:
	//   - error: Non-nil if the shutdown timeout was exceeded
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus represents the health status of a delivery channel.
type ChannelHealthStatus struct {
	Name               string // Channel name (e.g., "telegram")
	Enabled            bool   // Whether the channel is enabled
	CircuitBreakerOpen bool   // Whether the circuit breaker is currently open
}

// breakerStater is implemented by channels that guard sends with a circuit
// breaker and can report its state.
type breakerStater interface {
	BreakerOpen() bool
}

// service is the concrete implementation of Service interface.
type service struct {
	channels       []Channel          // Delivery channels (Telegram, noop, etc.)
	workerPool     chan struct{}      // Semaphore for limiting concurrent publishes
	wg             sync.WaitGroup     // Track in-flight publishes
	shutdownCtx    context.Context    // Context for signaling shutdown
	shutdownCancel context.CancelFunc // Cancel function for shutdown
}

// NewService creates a new publisher service with the given channels.
//
// Parameters:
//   - channels: List of delivery channels
//   - maxConcurrent: Maximum concurrent publishes (a digest bot needs few;
//     recommended: number of channels plus slack)
func NewService(channels []Channel, maxConcurrent int) Service {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	return &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// PublishDigest implements Service.PublishDigest.
func (s *service) PublishDigest(ctx context.Context, digest *entity.Digest) error {
	// Validate input before spawning goroutines
	if digest == nil || digest.Caption == "" {
		slog.Warn("Invalid digest for publishing",
			slog.Bool("nil_digest", digest == nil))
		return nil
	}

	// Inherit the request ID from the compose cycle when present
	ctx, requestID := requestid.Ensure(ctx)
	logger := logging.WithRequestID(ctx, slog.Default())

	enabledCount := 0
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabledCount++
		}
	}
	SetChannelsEnabled(float64(enabledCount))

	if enabledCount == 0 {
		logger.Debug("No delivery channels enabled")
		return nil
	}

	logger.Info("Dispatching digest to channels",
		slog.Int("caption_chars", digest.CharCount),
		slog.Bool("with_image", digest.HasImage()),
		slog.Bool("fallback", digest.Fallback),
		slog.Int("enabled_channels", enabledCount))

	for _, ch := range s.channels {
		if ch.IsEnabled() {
			channel := ch // Capture for goroutine
			s.wg.Add(1)
			go s.publishToChannel(requestID, channel, digest)
		}
	}

	return nil
}

// publishToChannel delivers the digest to a single channel in a goroutine.
func (s *service) publishToChannel(requestID string, channel Channel, digest *entity.Digest) {
	defer s.wg.Done()

	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in delivery channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	// Acquire worker slot (with timeout to prevent blocking)
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }() // Release slot
	case <-time.After(workerSlotTimeout):
		slog.Warn("Digest publish dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Any("error", ErrPublishDropped))
		RecordDropped(channel.Name(), "pool_full")
		return
	}

	// Derive from the shutdown context so Shutdown cancels in-flight sends
	ctx, cancel := context.WithTimeout(s.shutdownCtx, publishTimeout)
	defer cancel()
	ctx = requestid.WithRequestID(ctx, requestID)

	startTime := time.Now()
	RecordDispatch(channel.Name())

	err := channel.Send(ctx, digest)
	duration := time.Since(startTime)

	switch {
	case errors.Is(err, ErrCircuitBreakerOpen):
		RecordDropped(channel.Name(), "circuit_open")
		RecordCircuitBreakerOpen(channel.Name())
		slog.Warn("Digest publish rejected: circuit breaker open",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
	case err != nil:
		RecordFailure(channel.Name(), duration)
		slog.Warn("Channel publish failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Int("caption_chars", digest.CharCount),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	default:
		RecordSuccess(channel.Name(), duration)
		slog.Info("Channel publish succeeded",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Int("caption_chars", digest.CharCount),
			slog.Duration("send_duration", duration))
	}
}

// GetChannelHealth implements Service.GetChannelHealth.
func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))

	for _, ch := range s.channels {
		status := ChannelHealthStatus{
			Name:    ch.Name(),
			Enabled: ch.IsEnabled(),
		}
		if bs, ok := ch.(breakerStater); ok {
			status.CircuitBreakerOpen = bs.BreakerOpen()
		}
		statuses = append(statuses, status)
	}

	return statuses
}

// Shutdown implements Service.Shutdown.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down publisher service")

	// Signal all goroutines to stop
	s.shutdownCancel()

	// Wait for in-flight publishes with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Publisher service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Publisher service shutdown timeout")
		return ctx.Err()
	}
}
