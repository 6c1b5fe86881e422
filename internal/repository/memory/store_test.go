package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var _ repository.Store = (*Store)(nil)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	})
}

func TestStore_Seed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 6)
	assert.Equal(t, "Wireless Headphones", products[0].Name)
	assert.Equal(t, int64(12999), products[5].Price)

	items, err := s.ListCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "cart2", items[1].ID)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestStore_GetProduct(t *testing.T) {
	s := NewStore()

	p, err := s.GetProduct(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Bluetooth Speaker", p.Name)

	_, err = s.GetProduct(context.Background(), "99")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "NOT_FOUND: product with id 99 not found: resource not found", err.Error())
}

func TestStore_AddToCart_MergesByProduct(t *testing.T) {
	s := NewStore(WithCartItems(nil), sequentialIDs())
	ctx := context.Background()

	first, err := s.AddToCart(ctx, "1", 2)
	require.NoError(t, err)
	assert.Equal(t, "line-1", first.ID)
	assert.Equal(t, "Wireless Headphones", first.Name)
	assert.Equal(t, int64(19999), first.Price)

	second, err := s.AddToCart(ctx, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, "line-1", second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := s.ListCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.CartItem{
		ID: "line-1", ProductID: "1", Name: "Wireless Headphones",
		Price: 19999, Quantity: 5, Image: placeholderImage,
	}, items[0])
}

func TestStore_AddToCart_Errors(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.AddToCart(ctx, "42", 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.AddToCart(ctx, "1", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_UpdateCartItemQuantity(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	item, err := s.UpdateCartItemQuantity(ctx, "cart2", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)

	_, err = s.UpdateCartItemQuantity(ctx, "nonexistent", 5)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.UpdateCartItemQuantity(ctx, "cart2", -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_RemoveFromCart_Idempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.RemoveFromCart(ctx, "cart1"))
	require.NoError(t, s.RemoveFromCart(ctx, "cart1"))
	require.NoError(t, s.RemoveFromCart(ctx, "nonexistent"))

	items, err := s.ListCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "cart2", items[0].ID)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	items, err := s.ListCartItems(ctx)
	require.NoError(t, err)
	items[0].Quantity = 99

	again, err := s.ListCartItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Quantity)
}

func TestStore_LatencyHonorsContext(t *testing.T) {
	s := NewStore(WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.ListProducts(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := NewStore(WithCartItems(nil))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddToCart(ctx, "2", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := s.ListCartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 20, items[0].Quantity)
}
