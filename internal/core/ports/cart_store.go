package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// CartStore owns one cart per identity. Every method returns a copy.
type CartStore interface {
	// Get returns the identity's cart, creating an empty one on first access.
	Get(ctx context.Context, identityID uuid.UUID) domain.Cart
	// AddItem fails with domain.ErrMissingInventory for unknown listings and
	// domain.ErrInvalidQuantity when the line would fall outside
	// 1..domain.MaxLineQuantity. The cart is unchanged on error.
	AddItem(ctx context.Context, identityID, listingID uuid.UUID, quantity int) (domain.Cart, error)
	// RemoveItem is a no-op when the listing is not in the cart.
	RemoveItem(ctx context.Context, identityID, listingID uuid.UUID) domain.Cart
	// Take empties the cart in one step and returns what it held.
	Take(ctx context.Context, identityID uuid.UUID) domain.Cart
	// Restore puts taken lines back, merging with anything added since.
	Restore(ctx context.Context, identityID uuid.UUID, items []domain.CartItem) domain.Cart
}
