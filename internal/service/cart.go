package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Cart operation limits.
const (
	// MaxQuantityPerItem is the maximum quantity of a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines in the cart.
	MaxItemsPerCart = 50
)

// EventPublisher receives cart mutations. Failures are logged, never returned
// to the caller.
type EventPublisher interface {
	PublishItemAdded(ctx context.Context, item domain.CartItem) error
	PublishItemUpdated(ctx context.Context, item domain.CartItem) error
	PublishItemRemoved(ctx context.Context, itemID string) error
}

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// CartService implements the business rules around the single cart.
type CartService struct {
	repo      repository.CartRepository
	publisher EventPublisher
	logger    *slog.Logger

	// mu serializes mutations so limit checks see the cart they modify.
	mu sync.Mutex
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, publisher EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListItems returns the cart with its totals.
func (s *CartService) ListItems(ctx context.Context) (domain.Cart, error) {
	items, err := s.repo.ListCartItems(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	return domain.NewCart(items), nil
}

// AddItem adds quantity of a product, merging into an existing line.
func (s *CartService) AddItem(ctx context.Context, input AddItemInput) (domain.CartItem, error) {
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return domain.CartItem{}, apperrors.InvalidInput("product id is required")
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return domain.CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.ListCartItems(ctx)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("list cart items: %w", err)
	}

	existing := false
	for _, it := range items {
		if it.ProductID != productID {
			continue
		}
		existing = true
		if it.Quantity+input.Quantity > MaxQuantityPerItem {
			return domain.CartItem{}, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
	}
	if !existing && len(items) >= MaxItemsPerCart {
		return domain.CartItem{}, apperrors.InvalidInput(fmt.Sprintf("cart cannot hold more than %d items", MaxItemsPerCart))
	}

	item, err := s.repo.AddToCart(ctx, productID, input.Quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("add product %s to cart: %w", productID, err)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("item_id", item.ID),
		slog.String("product_id", productID),
		slog.Int("quantity", item.Quantity),
	)
	if err := s.publisher.PublishItemAdded(ctx, item); err != nil {
		s.logPublishError(ctx, "cart.item_added", err)
	}
	return item, nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.CartItem{}, apperrors.InvalidInput("cart item id is required")
	}
	if err := validateQuantity(quantity); err != nil {
		return domain.CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.repo.UpdateCartItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("update cart item %s: %w", itemID, err)
	}

	s.logger.InfoContext(ctx, "cart item updated",
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)
	if err := s.publisher.PublishItemUpdated(ctx, item); err != nil {
		s.logPublishError(ctx, "cart.item_updated", err)
	}
	return item, nil
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func (s *CartService) RemoveItem(ctx context.Context, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return apperrors.InvalidInput("cart item id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.RemoveFromCart(ctx, itemID); err != nil {
		return fmt.Errorf("remove cart item %s: %w", itemID, err)
	}

	s.logger.InfoContext(ctx, "cart item removed", slog.String("item_id", itemID))
	if err := s.publisher.PublishItemRemoved(ctx, itemID); err != nil {
		s.logPublishError(ctx, "cart.item_removed", err)
	}
	return nil
}

func (s *CartService) logPublishError(ctx context.Context, eventType string, err error) {
	s.logger.WarnContext(ctx, "failed to publish cart event",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

func validateQuantity(q int) error {
	if q < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	if q > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	return nil
}
