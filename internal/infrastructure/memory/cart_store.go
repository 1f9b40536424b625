package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

// CartStore keeps one cart per identity behind a single lock.
type CartStore struct {
	products ports.ProductLookup

	mu    sync.Mutex
	carts map[uuid.UUID]domain.Cart
}

var _ ports.CartStore = (*CartStore)(nil)

func NewCartStore(products ports.ProductLookup) *CartStore {
	return &CartStore{
		products: products,
		carts:    make(map[uuid.UUID]domain.Cart),
	}
}

func (s *CartStore) Get(_ context.Context, identityID uuid.UUID) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartLocked(identityID).Clone()
}

// AddItem looks the product up before taking the cart lock, so no two store
// locks are ever held together. A line never grows past MaxLineQuantity.
func (s *CartStore) AddItem(ctx context.Context, identityID, listingID uuid.UUID, quantity int) (domain.Cart, error) {
	product, err := s.products.Get(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Cart{}, fmt.Errorf("listing %s: %w", listingID, domain.ErrMissingInventory)
		}
		return domain.Cart{}, err
	}
	if quantity < 1 || quantity > domain.MaxLineQuantity {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(identityID)
	if i := cart.Find(listingID); i >= 0 {
		if quantity > domain.MaxLineQuantity-cart.Items[i].Quantity {
			return domain.Cart{}, fmt.Errorf("listing %s: line would exceed %d: %w",
				listingID, domain.MaxLineQuantity, domain.ErrInvalidQuantity)
		}
		cart.Items[i].Quantity += quantity
		cart.Items[i].Product = product
	} else {
		cart.Items = append(cart.Items, domain.CartItem{Product: product, Quantity: quantity})
	}
	s.carts[identityID] = cart
	return cart.Clone(), nil
}

func (s *CartStore) RemoveItem(_ context.Context, identityID, listingID uuid.UUID) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(identityID)
	if i := cart.Find(listingID); i >= 0 {
		items := make([]domain.CartItem, 0, len(cart.Items)-1)
		items = append(items, cart.Items[:i]...)
		items = append(items, cart.Items[i+1:]...)
		cart.Items = items
		s.carts[identityID] = cart
	}
	return cart.Clone()
}

func (s *CartStore) Take(_ context.Context, identityID uuid.UUID) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(identityID)
	s.carts[identityID] = domain.Cart{Items: []domain.CartItem{}}
	return cart.Clone()
}

// Restore puts items back ahead of lines added since they were taken. Lines
// for the same listing are merged and capped at MaxLineQuantity.
func (s *CartStore) Restore(_ context.Context, identityID uuid.UUID, items []domain.CartItem) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := domain.Cart{Items: make([]domain.CartItem, 0, len(items))}
	merged.Items = append(merged.Items, items...)
	for _, item := range s.cartLocked(identityID).Items {
		i := merged.Find(item.Product.ListingID)
		if i < 0 {
			merged.Items = append(merged.Items, item)
			continue
		}
		merged.Items[i].Quantity = min(merged.Items[i].Quantity+item.Quantity, domain.MaxLineQuantity)
	}
	s.carts[identityID] = merged
	return merged.Clone()
}

// cartLocked returns the stored cart, creating it lazily. Caller holds mu.
func (s *CartStore) cartLocked(identityID uuid.UUID) domain.Cart {
	cart, ok := s.carts[identityID]
	if !ok {
		cart = domain.Cart{Items: []domain.CartItem{}}
		s.carts[identityID] = cart
	}
	return cart
}
