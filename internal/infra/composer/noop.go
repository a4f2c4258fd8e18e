package composer

import (
	"context"
	"time"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
)

// NoOp is a composer that returns the static fallback edition without
// calling any API. This is useful for dry runs and development when live
// news is not needed.
type NoOp struct{}

// NewNoOp creates a new NoOp composer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// ComposeDigest returns the fallback edition dated today.
func (n *NoOp) ComposeDigest(_ context.Context) (*entity.Digest, error) {
	date := time.Now().Format(dateLayout)
	return entity.NewDigest(fallbackCaption(date), fallbackImageURL, true)
}

// ComposeTopic returns the same digest as ComposeDigest.
func (n *NoOp) ComposeTopic(ctx context.Context, _ string) (*entity.Digest, error) {
	return n.ComposeDigest(ctx)
}

// CheckConnectivity always succeeds for the no-op composer.
func (n *NoOp) CheckConnectivity(_ context.Context) bool {
	return true
}
