// Package digest orchestrates a single digest run: compose today's edition,
// then hand it to the delivery channels.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/observability/logging"
	"github.com/DepSpiel/telegram-pidrgpt/internal/publisher"
	"github.com/DepSpiel/telegram-pidrgpt/internal/requestid"
)

// Composer is an interface for producing a publishable digest.
// The composer degrades to fallback content internally, so an error return
// means the digest could not be constructed at all.
type Composer interface {
	ComposeDigest(ctx context.Context) (*entity.Digest, error)
	ComposeTopic(ctx context.Context, topic string) (*entity.Digest, error)
	CheckConnectivity(ctx context.Context) bool
}

// Service runs the compose-and-publish cycle.
type Service struct {
	Composer  Composer
	Publisher publisher.Service
}

// NewService creates a digest Service with the provided dependencies.
//
// Parameters:
//   - composer: Service producing the digest content
//   - pub: Delivery service fanning the digest out to channels
//
// Returns:
//   - Service: Configured digest service ready to use
func NewService(composer Composer, pub publisher.Service) Service {
	return Service{
		Composer:  composer,
		Publisher: pub,
	}
}

// RunStats contains statistics about one digest run.
type RunStats struct {
	RequestID       string
	CaptionChars    int
	Fallback        bool
	WithImage       bool
	EnabledChannels int
	Duration        time.Duration
}

// ComposeAndPublish composes today's digest and dispatches it to the enabled
// delivery channels. Delivery happens asynchronously inside the publisher,
// so Duration covers composition plus dispatch, not channel completion.
func (s *Service) ComposeAndPublish(ctx context.Context) (*RunStats, error) {
	ctx, requestID := requestid.Ensure(ctx)
	start := time.Now()

	digest, err := s.Composer.ComposeDigest(ctx)
	if err != nil {
		return nil, fmt.Errorf("compose digest: %w", err)
	}

	if err := s.Publisher.PublishDigest(ctx, digest); err != nil {
		return nil, fmt.Errorf("publish digest: %w", err)
	}

	enabled := 0
	for _, status := range s.Publisher.GetChannelHealth() {
		if status.Enabled {
			enabled++
		}
	}

	stats := &RunStats{
		RequestID:       requestID,
		CaptionChars:    digest.CharCount,
		Fallback:        digest.Fallback,
		WithImage:       digest.HasImage(),
		EnabledChannels: enabled,
		Duration:        time.Since(start),
	}

	logger := logging.WithRequestID(ctx, slog.Default())
	logger.Info("digest run completed",
		slog.Int("caption_chars", stats.CaptionChars),
		slog.Bool("fallback", stats.Fallback),
		slog.Bool("with_image", stats.WithImage),
		slog.Int("enabled_channels", stats.EnabledChannels),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// CheckConnectivity reports whether the composer's upstream API is reachable.
// Used by the readiness probe before the first scheduled run.
func (s *Service) CheckConnectivity(ctx context.Context) bool {
	return s.Composer.CheckConnectivity(ctx)
}
