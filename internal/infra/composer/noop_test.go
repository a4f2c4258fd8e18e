package composer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
)

func TestNoOp_ComposeDigest(t *testing.T) {
	digest, err := NewNoOp().ComposeDigest(context.Background())

	require.NoError(t, err)
	require.NotNil(t, digest)

	assert.True(t, digest.Fallback)
	assert.Equal(t, fallbackImageURL, digest.ImageURL)
	assert.Contains(t, digest.Caption, defaultTitle)
	assert.Contains(t, digest.Caption, fallbackBullets[0])
	assert.LessOrEqual(t, digest.CharCount, entity.MaxCaptionRunes)
}

func TestNoOp_ComposeTopic(t *testing.T) {
	digest, err := NewNoOp().ComposeTopic(context.Background(), "etf flows")

	require.NoError(t, err)
	assert.True(t, digest.Fallback)
}

func TestNoOp_CheckConnectivity(t *testing.T) {
	assert.True(t, NewNoOp().CheckConnectivity(context.Background()))
}
