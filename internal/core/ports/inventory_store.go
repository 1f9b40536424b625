package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// ProductLookup is the read side of the inventory the cart depends on.
type ProductLookup interface {
	Get(ctx context.Context, listingID uuid.UUID) (domain.Product, error)
}

// InventoryStore owns products and their stock counters.
//
// Operations touching both maps lock products before counters.
type InventoryStore interface {
	ProductLookup
	List(ctx context.Context) []domain.Product
	Counters(ctx context.Context, listingID uuid.UUID) (domain.InventoryCounters, error)
	// Seed is an administrative bulk-load used at startup.
	Seed(ctx context.Context, product domain.Product, counters domain.InventoryCounters) error
	Allocate(ctx context.Context, listingID uuid.UUID, n int) error
	Release(ctx context.Context, listingID uuid.UUID, n int) error
	Ship(ctx context.Context, listingID uuid.UUID, n int) error
}
