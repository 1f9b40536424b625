package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

// InventoryStore keeps products and counters in two independently locked maps.
// Anything that needs both takes productsMu first, then countersMu.
type InventoryStore struct {
	productsMu sync.Mutex
	products   map[uuid.UUID]domain.Product

	countersMu sync.Mutex
	counters   map[uuid.UUID]domain.InventoryCounters
}

var _ ports.InventoryStore = (*InventoryStore)(nil)

func NewInventoryStore() *InventoryStore {
	return &InventoryStore{
		products: make(map[uuid.UUID]domain.Product),
		counters: make(map[uuid.UUID]domain.InventoryCounters),
	}
}

// List returns a snapshot of all products in no particular order.
func (s *InventoryStore) List(_ context.Context) []domain.Product {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out
}

func (s *InventoryStore) Get(_ context.Context, listingID uuid.UUID) (domain.Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	p, ok := s.products[listingID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *InventoryStore) Counters(_ context.Context, listingID uuid.UUID) (domain.InventoryCounters, error) {
	s.countersMu.Lock()
	defer s.countersMu.Unlock()

	c, ok := s.counters[listingID]
	if !ok {
		return domain.InventoryCounters{}, domain.ErrNotFound
	}
	return c, nil
}

// Seed inserts or replaces a product together with its counters.
func (s *InventoryStore) Seed(_ context.Context, product domain.Product, counters domain.InventoryCounters) error {
	if err := counters.Validate(); err != nil {
		return err
	}
	if product.ListingID == uuid.Nil {
		return fmt.Errorf("seed %q: missing listing id", product.Name)
	}

	s.productsMu.Lock()
	defer s.productsMu.Unlock()
	s.countersMu.Lock()
	defer s.countersMu.Unlock()

	s.products[product.ListingID] = product
	s.counters[product.ListingID] = counters
	return nil
}

func (s *InventoryStore) Allocate(_ context.Context, listingID uuid.UUID, n int) error {
	return s.adjust(listingID, func(c domain.InventoryCounters) (domain.InventoryCounters, error) {
		return c.Allocate(n)
	})
}

func (s *InventoryStore) Release(_ context.Context, listingID uuid.UUID, n int) error {
	return s.adjust(listingID, func(c domain.InventoryCounters) (domain.InventoryCounters, error) {
		return c.Release(n)
	})
}

func (s *InventoryStore) Ship(_ context.Context, listingID uuid.UUID, n int) error {
	return s.adjust(listingID, func(c domain.InventoryCounters) (domain.InventoryCounters, error) {
		return c.Ship(n)
	})
}

// adjust holds both locks so the product cannot disappear between the
// existence check and the counter update.
func (s *InventoryStore) adjust(listingID uuid.UUID, apply func(domain.InventoryCounters) (domain.InventoryCounters, error)) error {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	if _, ok := s.products[listingID]; !ok {
		return fmt.Errorf("listing %s: %w", listingID, domain.ErrMissingInventory)
	}

	s.countersMu.Lock()
	defer s.countersMu.Unlock()

	next, err := apply(s.counters[listingID])
	if err != nil {
		return fmt.Errorf("listing %s: %w", listingID, err)
	}
	s.counters[listingID] = next
	return nil
}
