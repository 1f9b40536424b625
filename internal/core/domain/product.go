package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Price is an exact decimal amount.
type Product struct {
	ListingID   uuid.UUID       `json:"listing_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}

// InventoryCounters tracks stock for one product.
type InventoryCounters struct {
	Free    int `json:"free"`
	Ordered int `json:"ordered"`
	Sent    int `json:"sent"`
}

// Validate reports ErrInvalidCounters when any counter is negative.
func (c InventoryCounters) Validate() error {
	if c.Free < 0 || c.Ordered < 0 || c.Sent < 0 {
		return ErrInvalidCounters
	}
	return nil
}

// Allocate moves n units from free to ordered.
func (c InventoryCounters) Allocate(n int) (InventoryCounters, error) {
	if n < 1 {
		return c, ErrInvalidQuantity
	}
	if c.Free < n {
		return c, ErrInsufficientStock
	}
	c.Free -= n
	c.Ordered += n
	return c, nil
}

// Release moves n units from ordered back to free.
func (c InventoryCounters) Release(n int) (InventoryCounters, error) {
	if n < 1 {
		return c, ErrInvalidQuantity
	}
	if c.Ordered < n {
		return c, ErrInsufficientStock
	}
	c.Ordered -= n
	c.Free += n
	return c, nil
}

// Ship moves n units from ordered to sent.
func (c InventoryCounters) Ship(n int) (InventoryCounters, error) {
	if n < 1 {
		return c, ErrInvalidQuantity
	}
	if c.Ordered < n {
		return c, ErrInsufficientStock
	}
	c.Ordered -= n
	c.Sent += n
	return c, nil
}
