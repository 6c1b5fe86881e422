package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductRepository is the read side of the catalog.
type ProductRepository interface {
	// ListProducts returns every product in catalog order.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns the product or an error wrapping apperrors.ErrNotFound.
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

// CartRepository holds the single in-process cart.
type CartRepository interface {
	ListCartItems(ctx context.Context) ([]domain.CartItem, error)

	// AddToCart merges quantity into the line for productID, creating the
	// line when none exists. Unknown products fail with ErrNotFound.
	AddToCart(ctx context.Context, productID string, quantity int) (domain.CartItem, error)

	// UpdateCartItemQuantity sets the quantity of an existing line.
	// Unknown item ids fail with ErrNotFound.
	UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error)

	// RemoveFromCart deletes the line. Removing an absent id is not an error.
	RemoveFromCart(ctx context.Context, itemID string) error
}

// Store is the full Data Store contract.
type Store interface {
	ProductRepository
	CartRepository
}
