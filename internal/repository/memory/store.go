package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Store is an in-process Data Store. Every operation waits for the
// configured latency first and returns ctx.Err() if ctx ends during the wait.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	items    []domain.CartItem
	latency  time.Duration
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLatency sets the simulated latency applied to every operation.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// WithProducts replaces the seeded catalog.
func WithProducts(products []domain.Product) Option {
	return func(s *Store) { s.products = slices.Clone(products) }
}

// WithCartItems replaces the seeded cart.
func WithCartItems(items []domain.CartItem) Option {
	return func(s *Store) { s.items = slices.Clone(items) }
}

// WithIDGenerator overrides how new cart line ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore returns a store seeded with the demo catalog and cart.
func NewStore(opts ...Option) *Store {
	s := &Store{
		products: SeedProducts(),
		items:    SeedCartItems(),
		newID:    func() string { return "cart-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if err := s.wait(ctx); err != nil {
		return domain.Product{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findProduct(id)
}

func (s *Store) findProduct(id string) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, apperrors.NotFound("product", id)
}

func (s *Store) ListCartItems(ctx context.Context) ([]domain.CartItem, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := slices.Clone(s.items)
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (s *Store) AddToCart(ctx context.Context, productID string, quantity int) (domain.CartItem, error) {
	if err := s.wait(ctx); err != nil {
		return domain.CartItem{}, err
	}
	if quantity <= 0 {
		return domain.CartItem{}, apperrors.InvalidInput("quantity must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.findProduct(productID)
	if err != nil {
		return domain.CartItem{}, err
	}

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			return s.items[i], nil
		}
	}

	item := domain.CartItem{
		ID:        s.newID(),
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Image:     product.Image,
	}
	s.items = append(s.items, item)
	return item, nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error) {
	if err := s.wait(ctx); err != nil {
		return domain.CartItem{}, err
	}
	if quantity <= 0 {
		return domain.CartItem{}, apperrors.InvalidInput("quantity must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			return s.items[i], nil
		}
	}
	return domain.CartItem{}, apperrors.NotFound("cart item", itemID)
}

func (s *Store) RemoveFromCart(ctx context.Context, itemID string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.DeleteFunc(s.items, func(it domain.CartItem) bool {
		return it.ID == itemID
	})
	return nil
}
