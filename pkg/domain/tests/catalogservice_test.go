package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

func TestListProducts(t *testing.T) {
	store := newMockStore()
	catalogService := service.NewCatalogService(&mockProductRepository{store: store})

	products, err := catalogService.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	store.addProduct("Laptop", 60000, 50)
	store.addProduct("Keyboard", 1200, 7)

	products, err = catalogService.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Keyboard", products[0].Name)
	assert.Equal(t, 7, products[0].Inventory)
	assert.True(t, products[1].Price.Equal(decimalOf(60000)))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	dispatcher := &mockEventDispatcher{}
	seedService := service.NewSeedService(&mockUnitOfWork{store: store}, service.DefaultInventoryFloor, dispatcher)

	t.Run("Empty catalog gets the starter products", func(t *testing.T) {
		require.NoError(t, seedService.Seed(ctx))

		require.Len(t, store.products, len(service.StarterCatalog))
		for _, p := range store.products {
			assert.Equal(t, service.DefaultInventoryFloor, p.Inventory)
		}
		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.CatalogSeeded)
		assert.True(t, ok)
	})

	t.Run("Existing catalog is only topped up", func(t *testing.T) {
		dispatcher.Reset()
		var low, high *model.Product
		for _, p := range store.products {
			if low == nil {
				low = p
			} else if high == nil {
				high = p
			}
		}
		low.Inventory = 3
		high.Inventory = 80

		require.NoError(t, seedService.Seed(ctx))

		assert.Len(t, store.products, len(service.StarterCatalog))
		assert.Equal(t, service.DefaultInventoryFloor, store.products[low.ID].Inventory)
		assert.Equal(t, 80, store.products[high.ID].Inventory)

		require.Len(t, dispatcher.events, 1)
		event, ok := dispatcher.events[0].(model.InventoryRestocked)
		require.True(t, ok)
		assert.Equal(t, int64(1), event.ProductsAffected)
	})
}
