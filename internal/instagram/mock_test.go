package instagram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientSynthesizesIDs(t *testing.T) {
	m := NewMockClient(time.Millisecond)
	ctx := context.Background()

	containerID, err := m.CreateMediaContainer(ctx, "https://example.com/image.jpg", "caption")
	require.NoError(t, err)
	assert.Contains(t, containerID, "mock-container-")

	postID, err := m.PublishMediaContainer(ctx, containerID)
	require.NoError(t, err)
	assert.Contains(t, postID, "mock-post-")

	permalink, err := m.GetPermalink(ctx, postID)
	require.NoError(t, err)
	assert.Contains(t, permalink, postID)

	assert.True(t, m.ValidateToken(ctx))
}

func TestMockClientDistinctIDs(t *testing.T) {
	m := NewMockClient(0)
	ctx := context.Background()

	first, err := m.CreateMediaContainer(ctx, "https://example.com/a.jpg", "a")
	require.NoError(t, err)
	second, err := m.CreateMediaContainer(ctx, "https://example.com/b.jpg", "b")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestMockClientHonorsCancellation(t *testing.T) {
	m := NewMockClient(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.CreateMediaContainer(ctx, "https://example.com/image.jpg", "caption")
	require.ErrorIs(t, err, context.Canceled)

	_, err = m.GetPermalink(ctx, "mock-post-1")
	require.ErrorIs(t, err, context.Canceled)

	assert.False(t, m.ValidateToken(ctx))
}

func TestMockClientDelaysEveryOperation(t *testing.T) {
	delay := 20 * time.Millisecond
	m := NewMockClient(delay)
	ctx := context.Background()

	start := time.Now()
	_, err := m.GetPermalink(ctx, "mock-post-1")
	require.NoError(t, err)
	assert.True(t, m.ValidateToken(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}
