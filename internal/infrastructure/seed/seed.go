// Package seed fills the in-memory stores with demo data at startup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

var (
	names  = []string{"Amethyst", "Pothos", "Ruby", "Aroid", "Garnet", "Diamond", "Succulent"}
	images = []string{"amethyst.jpg", "blue.jpg", "blue_rock.jpg", "Chalcanthite.webp", "quartz.jpg", "talc.webp", "pothos.jpg"}
)

const description = "The description of the item we are looking at"

// StartingCounters is the stock every seeded listing begins with.
var StartingCounters = domain.InventoryCounters{Free: 12, Ordered: 3, Sent: 15}

// RandomProduct returns a product with a random name, image and a price
// between 1.00 and 29.99.
func RandomProduct(rng *rand.Rand) domain.Product {
	cents := 100 + rng.IntN(2900)
	return domain.Product{
		ListingID:   uuid.New(),
		Name:        names[rng.IntN(len(names))],
		Price:       decimal.New(int64(cents), -2),
		Description: description,
		Image:       images[rng.IntN(len(images))],
	}
}

// Products seeds n random listings.
func Products(ctx context.Context, inventory ports.InventoryStore, n int, rng *rand.Rand) error {
	for i := 0; i < n; i++ {
		if err := inventory.Seed(ctx, RandomProduct(rng), StartingCounters); err != nil {
			return fmt.Errorf("seed product %d: %w", i, err)
		}
	}
	return nil
}

// User registers the demo account. An existing account is left alone.
func User(ctx context.Context, users ports.UserStore, signup domain.Signup, log zerolog.Logger) error {
	identity, err := users.Add(ctx, signup)
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return nil
	case err != nil:
		return fmt.Errorf("seed user: %w", err)
	}
	log.Info().Str("identity_id", identity.ID.String()).Str("email", identity.Email).Msg("seed user ready")
	return nil
}
