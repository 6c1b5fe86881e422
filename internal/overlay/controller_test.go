package overlay

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func newTestController(t *testing.T, raw string, scrollY int, opts ...Option) (*Controller, *History, *MemoryViewport) {
	t.Helper()
	h, err := ParseHistory(raw)
	require.NoError(t, err)
	vp := NewMemoryViewport(scrollY)
	c := NewController(h, vp, opts...)
	t.Cleanup(c.Stop)
	return c, h, vp
}

func TestController_InitialStateFromURL(t *testing.T) {
	c, _, _ := newTestController(t, "/?modal=product&id=7", 0)

	s := c.State()
	assert.True(t, s.IsOpen())
	assert.Equal(t, ProductDetail, s.Kind)
	assert.Equal(t, "7", s.TargetID)
	assert.Zero(t, s.Generation)
}

func TestController_OpenThenClose(t *testing.T) {
	c, h, vp := newTestController(t, "/", 340)
	ctx := context.Background()

	s, err := c.Open(ctx, ProductDetail, "3")
	require.NoError(t, err)
	assert.True(t, s.IsOpen())
	assert.Equal(t, "3", s.TargetID)
	assert.Equal(t, "/?id=3&modal=product", h.Location().String())
	assert.Equal(t, 1, h.Len(), "open must not add a history entry")

	vp.ScrollTo(0)

	s = c.Close(ctx)
	assert.False(t, s.IsOpen())
	assert.Equal(t, "/", h.Location().String())
	assert.Equal(t, 340, vp.ScrollY())
	assert.Equal(t, 1, h.Len())
}

func TestController_ClosePreservesOtherParams(t *testing.T) {
	c, h, _ := newTestController(t, "/shop?sort=price", 0)
	ctx := context.Background()

	_, err := c.Open(ctx, CartSummary, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "/shop?modal=cart&sort=price", h.Location().String())
	assert.Empty(t, c.State().TargetID)

	c.Close(ctx)
	assert.Equal(t, "/shop?sort=price", h.Location().String())
}

func TestController_CloseTwiceIsIdempotent(t *testing.T) {
	c, _, vp := newTestController(t, "/", 100)
	ctx := context.Background()

	var notified int
	unsub := c.Subscribe(func(State) { notified++ })
	defer unsub()

	_, err := c.Open(ctx, CartSummary, "")
	require.NoError(t, err)
	first := c.Close(ctx)
	assert.Equal(t, 100, vp.ScrollY())

	vp.ScrollTo(55)
	second := c.Close(ctx)

	assert.Equal(t, first, second)
	assert.Equal(t, 55, vp.ScrollY(), "scroll must not be restored twice")
	assert.Equal(t, 2, notified)
}

func TestController_CloseWhileClosedIsNoop(t *testing.T) {
	c, h, vp := newTestController(t, "/?page=2", 80)

	s := c.Close(context.Background())

	assert.False(t, s.IsOpen())
	assert.Zero(t, s.Generation)
	assert.Equal(t, "/?page=2", h.Location().String())
	assert.Equal(t, 80, vp.ScrollY())
}

func TestController_SupersedeKeepsOriginalAnchor(t *testing.T) {
	c, h, vp := newTestController(t, "/", 200)
	ctx := context.Background()

	first, err := c.Open(ctx, ProductDetail, "1")
	require.NoError(t, err)
	vp.ScrollTo(10)

	second, err := c.Open(ctx, CartSummary, "")
	require.NoError(t, err)
	assert.Greater(t, second.Generation, first.Generation)
	assert.Equal(t, "/?modal=cart", h.Location().String())
	vp.ScrollTo(999)

	c.Close(ctx)
	assert.Equal(t, 200, vp.ScrollY())
}

func TestController_OpenSameStateIsNoop(t *testing.T) {
	c, _, _ := newTestController(t, "/", 0)
	ctx := context.Background()

	first, err := c.Open(ctx, ProductDetail, "4")
	require.NoError(t, err)
	again, err := c.Open(ctx, ProductDetail, "4")
	require.NoError(t, err)

	assert.Equal(t, first, again)
}

func TestController_OpenRejectsUnknownKinds(t *testing.T) {
	c, h, _ := newTestController(t, "/", 0)

	for _, kind := range []Kind{None, Kind("wishlist")} {
		_, err := c.Open(context.Background(), kind, "1")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	assert.False(t, c.State().IsOpen())
	assert.Equal(t, "/", h.Location().String())
}

func TestController_OpenWithoutRequiredTarget(t *testing.T) {
	c, h, _ := newTestController(t, "/", 0)

	s, err := c.Open(context.Background(), ProductDetail, "")
	require.NoError(t, err)

	assert.True(t, s.IsOpen())
	assert.True(t, s.Missing())
	assert.Equal(t, "/?modal=product", h.Location().String())
}

func TestController_FollowsNavigation(t *testing.T) {
	c, h, vp := newTestController(t, "/", 60)

	var seen []State
	unsub := c.Subscribe(func(s State) { seen = append(seen, s) })
	defer unsub()

	h.Push(mustParse(t, "/?modal=cart"))
	assert.Equal(t, CartSummary, c.State().Kind)

	vp.ScrollTo(0)
	require.True(t, h.Back())
	assert.False(t, c.State().IsOpen())
	assert.Equal(t, 60, vp.ScrollY())

	require.True(t, h.Forward())
	assert.Equal(t, CartSummary, c.State().Kind)

	require.Len(t, seen, 3)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i].Generation, seen[i-1].Generation)
	}
}

func TestController_NavigationIsIdempotent(t *testing.T) {
	c, h, _ := newTestController(t, "/?modal=product&id=9", 0)

	h.Push(mustParse(t, "/?modal=product&id=9&ref=home"))

	s := c.State()
	assert.Zero(t, s.Generation)
	assert.Equal(t, "9", s.TargetID)
}

func TestController_UnknownKindFromNavigationFailsClosed(t *testing.T) {
	c, h, _ := newTestController(t, "/", 0)
	_, err := c.Open(context.Background(), CartSummary, "")
	require.NoError(t, err)

	h.Push(mustParse(t, "/?modal=bogus&id=2"))

	assert.False(t, c.State().IsOpen())
}

func TestController_IsOpenTracksLastCall(t *testing.T) {
	c, _, _ := newTestController(t, "/", 0)
	ctx := context.Background()

	steps := []struct {
		open bool
		kind Kind
		id   string
	}{
		{true, ProductDetail, "1"},
		{false, None, ""},
		{false, None, ""},
		{true, CartSummary, ""},
		{true, ProductDetail, "2"},
		{true, ProductDetail, "2"},
		{false, None, ""},
		{true, ProductDetail, ""},
	}
	for i, step := range steps {
		if step.open {
			_, err := c.Open(ctx, step.kind, step.id)
			require.NoError(t, err)
		} else {
			c.Close(ctx)
		}
		assert.Equal(t, step.open, c.State().IsOpen(), "step %d", i)
	}
}

func TestController_IsCurrent(t *testing.T) {
	c, _, _ := newTestController(t, "/", 0)

	s, err := c.Open(context.Background(), CartSummary, "")
	require.NoError(t, err)
	assert.True(t, c.IsCurrent(s.Generation))

	c.Close(context.Background())
	assert.False(t, c.IsCurrent(s.Generation))
}

func TestController_Unsubscribe(t *testing.T) {
	c, _, _ := newTestController(t, "/", 0)
	calls := 0
	unsub := c.Subscribe(func(State) { calls++ })

	_, err := c.Open(context.Background(), CartSummary, "")
	require.NoError(t, err)
	unsub()
	c.Close(context.Background())

	assert.Equal(t, 1, calls)
}

func TestController_StopDetachesFromNavigator(t *testing.T) {
	c, h, _ := newTestController(t, "/", 0)
	c.Stop()

	h.Push(mustParse(t, "/?modal=cart"))

	assert.False(t, c.State().IsOpen())
}

type failingScrollStore struct{}

func (failingScrollStore) Save(context.Context, string, int) error {
	return errors.New("storage full")
}

func (failingScrollStore) Take(context.Context, string) (int, bool, error) {
	return 0, false, errors.New("storage gone")
}

func TestController_ScrollStoreFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("storefront", "debug", &buf)
	c, h, vp := newTestController(t, "/", 120, WithScrollStore(failingScrollStore{}), WithLogger(log))
	ctx := context.Background()

	s, err := c.Open(ctx, ProductDetail, "2")
	require.NoError(t, err)
	assert.True(t, s.IsOpen())

	vp.ScrollTo(5)
	s = c.Close(ctx)
	assert.False(t, s.IsOpen())
	assert.Equal(t, "/", h.Location().String())
	assert.Equal(t, 5, vp.ScrollY())

	assert.Contains(t, buf.String(), "failed to save scroll offset")
	assert.Contains(t, buf.String(), "failed to restore scroll offset")
}

func TestController_ScrollKey(t *testing.T) {
	store := NewMemoryScrollStore()
	c, _, _ := newTestController(t, "/", 42, WithScrollStore(store), WithScrollKey("session-1"))

	_, err := c.Open(context.Background(), CartSummary, "")
	require.NoError(t, err)

	offset, ok, err := store.Take(context.Background(), "session-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, offset)
}

func TestController_CloseIf(t *testing.T) {
	c, h, vp := newTestController(t, "/", 90)
	ctx := context.Background()

	first, err := c.Open(ctx, ProductDetail, "1")
	require.NoError(t, err)
	second, err := c.Open(ctx, ProductDetail, "2")
	require.NoError(t, err)

	assert.False(t, c.CloseIf(ctx, first.Generation))
	assert.Equal(t, second, c.State())
	assert.Equal(t, "/?id=2&modal=product", h.Location().String())

	vp.ScrollTo(0)
	assert.True(t, c.CloseIf(ctx, second.Generation))
	assert.False(t, c.State().IsOpen())
	assert.Equal(t, 90, vp.ScrollY())

	assert.False(t, c.CloseIf(ctx, c.State().Generation))
}

// blockingScrollStore holds Save until released.
type blockingScrollStore struct {
	*MemoryScrollStore
	saving  chan struct{}
	release chan struct{}
}

func (b *blockingScrollStore) Save(ctx context.Context, key string, offset int) error {
	close(b.saving)
	<-b.release
	return b.MemoryScrollStore.Save(ctx, key, offset)
}

func TestController_SlowScrollStoreDoesNotBlockReads(t *testing.T) {
	store := &blockingScrollStore{
		MemoryScrollStore: NewMemoryScrollStore(),
		saving:            make(chan struct{}),
		release:           make(chan struct{}),
	}
	c, _, vp := newTestController(t, "/", 480, WithScrollStore(store))
	ctx := context.Background()

	opened := make(chan State, 1)
	go func() {
		s, _ := c.Open(ctx, CartSummary, "")
		opened <- s
	}()

	<-store.saving
	s := c.State()
	assert.Equal(t, CartSummary, s.Kind)
	assert.True(t, c.IsCurrent(s.Generation))
	vp.ScrollTo(0)

	closed := make(chan State, 1)
	go func() { closed <- c.Close(ctx) }()

	close(store.release)
	<-opened
	assert.False(t, (<-closed).IsOpen())
	assert.Equal(t, 480, vp.ScrollY())
}
