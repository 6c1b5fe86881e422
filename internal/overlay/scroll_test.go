package overlay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryScrollStore_TakeOnce(t *testing.T) {
	s := NewMemoryScrollStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", 310))

	offset, ok, err := s.Take(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 310, offset)

	_, ok, err = s.Take(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryViewport_ClampsNegative(t *testing.T) {
	v := NewMemoryViewport(10)
	v.ScrollTo(-4)
	assert.Zero(t, v.ScrollY())
}
