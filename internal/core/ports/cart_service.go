package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// CatalogService exposes the product listing.
type CatalogService interface {
	ListProducts(ctx context.Context) []domain.Product
	Ready(ctx context.Context) bool
}

// CartService is the cart and checkout surface used by handlers.
type CartService interface {
	ViewCart(ctx context.Context, identityID uuid.UUID) domain.Cart
	AddToCart(ctx context.Context, identityID, listingID uuid.UUID, quantity int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, identityID, listingID uuid.UUID) domain.Cart
	Summary(ctx context.Context, identityID uuid.UUID) domain.OrderSummary
	Checkout(ctx context.Context, identityID uuid.UUID) (domain.Order, error)
}

// AuditSink receives audit events. Implementations must not block callers.
type AuditSink interface {
	Emit(event domain.AuditEvent)
}
