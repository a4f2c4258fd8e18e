package publisher

import (
	"context"
	"log/slog"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/requestid"
)

// NoopChannel is a no-operation implementation of the Channel interface.
// It stands in for real delivery during dry runs so the publish flow can be
// exercised end to end without posting anywhere.
// This follows the Null Object pattern.
type NoopChannel struct{}

// NewNoopChannel creates a new NoopChannel instance.
func NewNoopChannel() *NoopChannel {
	return &NoopChannel{}
}

// Name implements Channel.Name.
func (n *NoopChannel) Name() string {
	return "noop"
}

// IsEnabled always reports true so dry runs flow through the dispatcher.
func (n *NoopChannel) IsEnabled() bool {
	return true
}

// Send logs the digest instead of delivering it and returns nil.
func (n *NoopChannel) Send(ctx context.Context, digest *entity.Digest) error {
	if digest == nil || digest.Caption == "" {
		return ErrInvalidDigest
	}

	slog.InfoContext(ctx, "Dry-run publish, digest not delivered",
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.Int("caption_chars", digest.CharCount),
		slog.Bool("with_image", digest.HasImage()),
		slog.Bool("fallback", digest.Fallback))
	return nil
}
