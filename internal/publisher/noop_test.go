package publisher

import (
	"context"
	"testing"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
)

func TestNoopChannel_Name(t *testing.T) {
	ch := NewNoopChannel()
	if got := ch.Name(); got != "noop" {
		t.Errorf("Name() = %q, want %q", got, "noop")
	}
}

func TestNoopChannel_IsEnabled(t *testing.T) {
	ch := NewNoopChannel()
	if !ch.IsEnabled() {
		t.Error("IsEnabled() = false, want true so dry runs flow through the dispatcher")
	}
}

func TestNoopChannel_Send(t *testing.T) {
	ch := NewNoopChannel()
	ctx := context.Background()

	digest := testDigest(t)
	if err := ch.Send(ctx, digest); err != nil {
		t.Errorf("Send() with valid digest returned error: %v", err)
	}

	if err := ch.Send(ctx, nil); err != ErrInvalidDigest {
		t.Errorf("Send(nil) = %v, want ErrInvalidDigest", err)
	}

	if err := ch.Send(ctx, &entity.Digest{}); err != ErrInvalidDigest {
		t.Errorf("Send(empty caption) = %v, want ErrInvalidDigest", err)
	}
}
