package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/inventory"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// LowStockUseCase genera la lista de reposición: productos activos en o por debajo
// de su umbral, con la cantidad sugerida para volver a 1.5 × umbral.
type LowStockUseCase struct {
	productRepo repository.ProductRepository
}

// NewLowStockUseCase construye el caso de uso de reposición.
func NewLowStockUseCase(productRepo repository.ProductRepository) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo}
}

// LowStock devuelve la lista ordenada por déficit (umbral - stock), mayor primero.
func (uc *LowStockUseCase) LowStock(ctx context.Context, sess domain.Session) ([]dto.LowStockItemDTO, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	products, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("inventory.low_stock", err)
	}
	out := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		qty := inventory.SuggestedReorder(p.CurrentStock, p.LowStockThreshold)
		out = append(out, dto.LowStockItemDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			CurrentStock:      p.CurrentStock,
			LowStockThreshold: p.LowStockThreshold,
			SuggestedOrderQty: qty,
			UnitCost:          p.CostPrice,
			EstimatedCost:     p.CostPrice.Mul(decimal.NewFromInt(int64(qty))),
			SupplierID:        p.SupplierID,
		})
	}
	return out, nil
}
