package memory_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/infrastructure/memory"
)

func seededCartStore(t *testing.T, products ...domain.Product) *memory.CartStore {
	t.Helper()
	inventory := memory.NewInventoryStore()
	for _, p := range products {
		require.NoError(t, inventory.Seed(context.Background(), p, domain.InventoryCounters{Free: 100}))
	}
	return memory.NewCartStore(inventory)
}

func TestCartStore_GetCreatesEmptyCartIdempotently(t *testing.T) {
	store := seededCartStore(t)
	user := uuid.New()

	first := store.Get(context.Background(), user)
	second := store.Get(context.Background(), user)

	assert.Empty(t, first.Items)
	assert.Equal(t, first, second)
}

func TestCartStore_RepeatedAddMergesQuantity(t *testing.T) {
	ctx := context.Background()
	ruby := product("Ruby", "12.50")
	store := seededCartStore(t, ruby)
	user := uuid.New()

	_, err := store.AddItem(ctx, user, ruby.ListingID, 2)
	require.NoError(t, err)
	cart, err := store.AddItem(ctx, user, ruby.ListingID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, ruby, cart.Items[0].Product)
}

func TestCartStore_RejectsBadAdds(t *testing.T) {
	ctx := context.Background()
	ruby := product("Ruby", "12.50")
	store := seededCartStore(t, ruby)
	user := uuid.New()
	_, err := store.AddItem(ctx, user, ruby.ListingID, 1)
	require.NoError(t, err)
	before := store.Get(ctx, user)

	_, err = store.AddItem(ctx, user, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrMissingInventory)

	_, err = store.AddItem(ctx, user, ruby.ListingID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = store.AddItem(ctx, user, ruby.ListingID, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = store.AddItem(ctx, user, ruby.ListingID, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Equal(t, before, store.Get(ctx, user))
}

func TestCartStore_UnknownListingReportedBeforeQuantity(t *testing.T) {
	store := seededCartStore(t)

	for _, qty := range []int{0, -1, domain.MaxLineQuantity + 1} {
		_, err := store.AddItem(context.Background(), uuid.New(), uuid.New(), qty)
		assert.ErrorIs(t, err, domain.ErrMissingInventory, "quantity %d", qty)
	}
}

func TestCartStore_LineQuantityIsCapped(t *testing.T) {
	ctx := context.Background()
	ruby := product("Ruby", "12.50")
	store := seededCartStore(t, ruby)
	user := uuid.New()

	cart, err := store.AddItem(ctx, user, ruby.ListingID, domain.MaxLineQuantity)
	require.NoError(t, err)
	require.Equal(t, domain.MaxLineQuantity, cart.Items[0].Quantity)

	_, err = store.AddItem(ctx, user, ruby.ListingID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = store.AddItem(ctx, user, ruby.ListingID, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	cart = store.Get(ctx, user)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, domain.MaxLineQuantity, cart.Items[0].Quantity)
	assert.True(t, cart.Subtotal().IsPositive())
}

func TestCartStore_RemoveItem(t *testing.T) {
	ctx := context.Background()
	ruby, talc := product("Ruby", "12.50"), product("Talc", "1.00")
	store := seededCartStore(t, ruby, talc)
	user := uuid.New()
	_, _ = store.AddItem(ctx, user, ruby.ListingID, 1)
	_, _ = store.AddItem(ctx, user, talc.ListingID, 1)

	cart := store.RemoveItem(ctx, user, ruby.ListingID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, talc.ListingID, cart.Items[0].Product.ListingID)

	again := store.RemoveItem(ctx, user, ruby.ListingID)
	assert.Equal(t, cart, again)

	empty := store.RemoveItem(ctx, uuid.New(), ruby.ListingID)
	assert.Empty(t, empty.Items)
}

func TestCartStore_TakeEmptiesCart(t *testing.T) {
	ctx := context.Background()
	ruby := product("Ruby", "12.50")
	store := seededCartStore(t, ruby)
	user := uuid.New()
	_, _ = store.AddItem(ctx, user, ruby.ListingID, 4)

	taken := store.Take(ctx, user)
	require.Len(t, taken.Items, 1)
	assert.Equal(t, 4, taken.Items[0].Quantity)
	assert.Empty(t, store.Get(ctx, user).Items)
	assert.Empty(t, store.Take(ctx, user).Items)
}

func TestCartStore_RestoreMergesWithNewerLines(t *testing.T) {
	ctx := context.Background()
	ruby, talc := product("Ruby", "12.50"), product("Talc", "1.00")
	store := seededCartStore(t, ruby, talc)
	user := uuid.New()
	_, _ = store.AddItem(ctx, user, ruby.ListingID, 2)
	taken := store.Take(ctx, user)

	_, _ = store.AddItem(ctx, user, talc.ListingID, 1)
	_, _ = store.AddItem(ctx, user, ruby.ListingID, domain.MaxLineQuantity)

	cart := store.Restore(ctx, user, taken.Items)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, ruby.ListingID, cart.Items[0].Product.ListingID)
	assert.Equal(t, domain.MaxLineQuantity, cart.Items[0].Quantity)
	assert.Equal(t, talc.ListingID, cart.Items[1].Product.ListingID)
	assert.Equal(t, 1, cart.Items[1].Quantity)
	assert.Equal(t, cart, store.Get(ctx, user))
}

func TestCartStore_ReturnedCartIsACopy(t *testing.T) {
	ctx := context.Background()
	ruby := product("Ruby", "12.50")
	store := seededCartStore(t, ruby)
	user := uuid.New()

	cart, err := store.AddItem(ctx, user, ruby.ListingID, 1)
	require.NoError(t, err)
	cart.Items[0].Quantity = 99

	assert.Equal(t, 1, store.Get(ctx, user).Items[0].Quantity)
}

func TestCartStore_Subtotal(t *testing.T) {
	ctx := context.Background()
	ruby, pothos := product("Ruby", "12.50"), product("Pothos", "3.33")
	store := seededCartStore(t, ruby, pothos)
	user := uuid.New()

	_, _ = store.AddItem(ctx, user, ruby.ListingID, 2)
	cart, err := store.AddItem(ctx, user, pothos.ListingID, 1)
	require.NoError(t, err)

	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("28.33")), "got %s", cart.Subtotal())
	assert.Equal(t, 3, cart.Units())
}

func TestCartStore_ConcurrentAddsSameIdentityLoseNothing(t *testing.T) {
	ctx := context.Background()
	ruby := product("Ruby", "12.50")
	store := seededCartStore(t, ruby)
	user := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddItem(ctx, user, ruby.ListingID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart := store.Get(ctx, user)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 100, cart.Items[0].Quantity)
}

func TestCartStore_IdentitiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	ruby, talc := product("Ruby", "12.50"), product("Talc", "1.00")
	store := seededCartStore(t, ruby, talc)
	alice, bob := uuid.New(), uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.AddItem(ctx, alice, ruby.ListingID, 1)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.AddItem(ctx, bob, talc.ListingID, 2)
			store.RemoveItem(ctx, bob, ruby.ListingID)
		}()
	}
	wg.Wait()

	a := store.Get(ctx, alice)
	require.Len(t, a.Items, 1)
	assert.Equal(t, ruby.ListingID, a.Items[0].Product.ListingID)
	assert.Equal(t, 50, a.Items[0].Quantity)

	b := store.Get(ctx, bob)
	require.Len(t, b.Items, 1)
	assert.Equal(t, talc.ListingID, b.Items[0].Product.ListingID)
	assert.Equal(t, 100, b.Items[0].Quantity)
}
