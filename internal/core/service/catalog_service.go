package service

import (
	"context"
	"sort"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

type catalogService struct {
	inventory ports.InventoryStore
}

// NewCatalogService returns a CatalogService over the inventory.
func NewCatalogService(inventory ports.InventoryStore) ports.CatalogService {
	return &catalogService{inventory: inventory}
}

// ListProducts sorts by name, then listing id, so pages render stably.
func (s *catalogService) ListProducts(ctx context.Context) []domain.Product {
	products := s.inventory.List(ctx)
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ListingID.String() < products[j].ListingID.String()
	})
	return products
}

func (s *catalogService) Ready(ctx context.Context) bool {
	return len(s.inventory.List(ctx)) > 0
}
