package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// CartItem is one line of a cart. 1 <= Quantity <= MaxLineQuantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds at most one item per listing, in insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Subtotal sums LineTotal over all items using exact decimal arithmetic.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Units returns the total quantity across all lines.
func (c Cart) Units() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Find returns the index of the line for listingID, or -1.
func (c Cart) Find(listingID uuid.UUID) int {
	for i, item := range c.Items {
		if item.Product.ListingID == listingID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers never share the store's slice.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// OrderSummary is the checkout view of a cart.
type OrderSummary struct {
	Items    []CartItem      `json:"items"`
	Units    int             `json:"units"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize builds an OrderSummary with a flat shipping rate. An empty cart ships free.
func (c Cart) Summarize(shipping decimal.Decimal) OrderSummary {
	if len(c.Items) == 0 {
		shipping = decimal.Zero
	}
	subtotal := c.Subtotal()
	return OrderSummary{
		Items:    c.Clone().Items,
		Units:    c.Units(),
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// Order is a placed checkout. Inventory for every line has been allocated.
type Order struct {
	ID         uuid.UUID    `json:"id"`
	IdentityID uuid.UUID    `json:"identity_id"`
	Summary    OrderSummary `json:"summary"`
	PlacedAt   time.Time    `json:"placed_at"`
}
