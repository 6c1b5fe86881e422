package redisscroll

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/overlay"
)

var _ overlay.ScrollStore = (*Store)(nil)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, 30*time.Minute), mr
}

func TestStore_SaveAndTake(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "session-1", 420))
	raw, err := mr.Get("storefront:scroll:session-1")
	require.NoError(t, err)
	assert.Equal(t, "420", raw)

	offset, ok, err := s.Take(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 420, offset)
	assert.False(t, mr.Exists("storefront:scroll:session-1"))
}

func TestStore_TakeMissing(t *testing.T) {
	s, _ := setupTestRedis(t)

	offset, ok, err := s.Take(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, offset)
}

func TestStore_TTL(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", 1))
	assert.Equal(t, 30*time.Minute, mr.TTL("storefront:scroll:k"))

	mr.FastForward(31 * time.Minute)
	_, ok, err := s.Take(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_WithPrefix(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, s.WithPrefix("tab-7:").Save(context.Background(), "k", 9))
	assert.True(t, mr.Exists("tab-7:k"))
}

func TestStore_CorruptValue(t *testing.T) {
	s, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:scroll:k", "not-a-number"))

	_, ok, err := s.Take(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "parse scroll offset")
}

func TestStore_Unavailable(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	err := s.Save(context.Background(), "k", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save scroll offset")
}

func TestStore_RestoresThroughController(t *testing.T) {
	s, _ := setupTestRedis(t)
	h, err := overlay.ParseHistory("/")
	require.NoError(t, err)
	vp := overlay.NewMemoryViewport(250)
	c := overlay.NewController(h, vp, overlay.WithScrollStore(s))
	defer c.Stop()
	ctx := context.Background()

	_, err = c.Open(ctx, overlay.CartSummary, "")
	require.NoError(t, err)
	vp.ScrollTo(0)
	c.Close(ctx)

	assert.Equal(t, 250, vp.ScrollY())
}

func TestStore_Pending(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, s.Save(ctx, "a", 1))
	require.NoError(t, s.Save(ctx, "b", 2))
	n, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, _, err = s.Take(ctx, "a")
	require.NoError(t, err)
	n, err = s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
