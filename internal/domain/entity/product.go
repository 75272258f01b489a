package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del supermercado.
// CurrentStock solo cambia a través de ventas, devoluciones y ajustes de inventario.
type Product struct {
	ID                    string
	Name                  string
	SKU                   string // único en el catálogo
	Unit                  string // unidad de medida: und, kg, lt...
	CostPrice             decimal.Decimal
	SellingPrice          decimal.Decimal
	DiscountPrice         *decimal.Decimal // nil = sin descuento
	CurrentStock          int
	LowStockThreshold     int
	CategoryID            string // vacío = sin categoría
	SupplierID            string // vacío = sin proveedor
	Active                bool
	Perishable            bool
	Organic               bool
	RequiresRefrigeration bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// EffectivePrice devuelve el precio de descuento si existe, si no el precio de venta.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.GreaterThan(decimal.Zero) {
		return *p.DiscountPrice
	}
	return p.SellingPrice
}

// IsLowStock indica si el stock está en o por debajo del umbral.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.LowStockThreshold
}
