package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

type cartService struct {
	carts     ports.CartStore
	inventory ports.InventoryStore
	audit     ports.AuditSink
	shipping  decimal.Decimal
	log       zerolog.Logger
	now       func() time.Time
}

// NewCartService returns a CartService. shipping is the flat rate added to
// every non-empty order.
func NewCartService(
	carts ports.CartStore,
	inventory ports.InventoryStore,
	audit ports.AuditSink,
	shipping decimal.Decimal,
	log zerolog.Logger,
) ports.CartService {
	return &cartService{
		carts:     carts,
		inventory: inventory,
		audit:     audit,
		shipping:  shipping,
		log:       log,
		now:       time.Now,
	}
}

func (s *cartService) ViewCart(ctx context.Context, identityID uuid.UUID) domain.Cart {
	return s.carts.Get(ctx, identityID)
}

func (s *cartService) AddToCart(ctx context.Context, identityID, listingID uuid.UUID, quantity int) (domain.Cart, error) {
	cart, err := s.carts.AddItem(ctx, identityID, listingID, quantity)
	if err != nil {
		s.log.Debug().Err(err).Str("identity_id", identityID.String()).Str("listing_id", listingID.String()).Msg("add to cart rejected")
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, identityID, listingID uuid.UUID) domain.Cart {
	return s.carts.RemoveItem(ctx, identityID, listingID)
}

func (s *cartService) Summary(ctx context.Context, identityID uuid.UUID) domain.OrderSummary {
	return s.carts.Get(ctx, identityID).Summarize(s.shipping)
}

// Checkout takes the cart, then allocates stock line by line at the prices
// captured in it. Taking the cart first means two concurrent checkouts cannot
// both order the same lines. Any failure releases what was allocated and puts
// the lines back.
func (s *cartService) Checkout(ctx context.Context, identityID uuid.UUID) (domain.Order, error) {
	cart := s.carts.Take(ctx, identityID)
	if len(cart.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	allocated := make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if err := s.inventory.Allocate(ctx, item.Product.ListingID, item.Quantity); err != nil {
			s.release(ctx, allocated)
			s.carts.Restore(ctx, identityID, cart.Items)
			if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrMissingInventory) {
				s.log.Info().Err(err).Str("identity_id", identityID.String()).Msg("checkout rejected")
			} else {
				s.log.Error().Err(err).Str("identity_id", identityID.String()).Msg("checkout failed")
			}
			return domain.Order{}, fmt.Errorf("checkout: %w", err)
		}
		allocated = append(allocated, item)
	}

	order := domain.Order{
		ID:         uuid.New(),
		IdentityID: identityID,
		Summary:    cart.Summarize(s.shipping),
		PlacedAt:   s.now().UTC(),
	}
	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("identity_id", identityID.String()).
		Str("total", order.Summary.Total.StringFixed(2)).
		Msg("order placed")
	if s.audit != nil {
		s.audit.Emit(domain.AuditEvent{Kind: domain.AuditCheckout, IdentityID: identityID, Outcome: order.ID.String(), At: order.PlacedAt})
	}
	return order, nil
}

func (s *cartService) release(ctx context.Context, items []domain.CartItem) {
	for _, item := range items {
		if err := s.inventory.Release(ctx, item.Product.ListingID, item.Quantity); err != nil {
			s.log.Error().Err(err).Str("listing_id", item.Product.ListingID.String()).Msg("release after failed checkout")
		}
	}
}
