package dto

import "github.com/shopspring/decimal"

// Tipos de ajuste manual de inventario.
const (
	AdjustmentStockIn    = "stock_in"
	AdjustmentStockOut   = "stock_out"
	AdjustmentCorrection = "correction"
)

// StockAdjustmentRequest body para POST /api/inventory/adjustments.
// En correction, Quantity es el conteo físico absoluto (puede ser 0).
type StockAdjustmentRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Type      string           `json:"type" validate:"required,oneof=stock_in stock_out correction"`
	Quantity  int              `json:"quantity" validate:"gte=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,money"`
	Note      string           `json:"note" validate:"max=500"`
}

// StockAdjustmentResponse resultado del ajuste.
type StockAdjustmentResponse struct {
	ProductID     string          `json:"product_id"`
	PreviousStock int             `json:"previous_stock"`
	CurrentStock  int             `json:"current_stock"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Activities    []string        `json:"activity_ids"`
}

// LowStockItemDTO producto en o por debajo del umbral, con sugerencia de reposición.
type LowStockItemDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	CurrentStock      int             `json:"current_stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	SuggestedOrderQty int             `json:"suggested_order_qty"` // ceil(umbral * 1.5) - stock
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	SupplierID        string          `json:"supplier_id,omitempty"`
}
