package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/Supermercado-api/internal/application/inventory"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/memory"
)

func TestLowStock_OrdenPorDeficitYSugerencia(t *testing.T) {
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	now := time.Now()
	seed := func(id, name string, stock, threshold int, active bool) {
		require.NoError(t, products.Create(context.Background(), &entity.Product{
			ID: id, Name: name, SKU: name, CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(3),
			CurrentStock: stock, LowStockThreshold: threshold, Active: active, CreatedAt: now, UpdatedAt: now,
		}))
	}
	seed("p1", "Leche", 2, 10, true)  // déficit 8, sugerido 13
	seed("p2", "Pan", 4, 5, true)     // déficit 1, sugerido 4
	seed("p3", "Queso", 50, 10, true) // sobre el umbral
	seed("p4", "Viejo", 0, 10, false) // inactivo
	seed("p5", "Huevos", 0, 1, true)  // déficit 1, sugerido 2

	uc := appinv.NewLowStockUseCase(products)
	items, err := uc.LowStock(context.Background(), domain.Session{UserID: "u"})
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 13, items[0].SuggestedOrderQty)
	assert.True(t, items[0].EstimatedCost.Equal(decimal.NewFromInt(26)))
	assert.ElementsMatch(t, []string{"p2", "p5"}, []string{items[1].ProductID, items[2].ProductID})
}
