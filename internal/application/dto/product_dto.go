package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicial entra como stock_in.
type CreateProductRequest struct {
	Name                  string           `json:"name" validate:"required,min=1,max=200"`
	SKU                   string           `json:"sku" validate:"required,min=1,max=100"`
	Unit                  string           `json:"unit" validate:"omitempty,max=20"`
	CostPrice             decimal.Decimal  `json:"cost_price" validate:"gte=0,money"`
	SellingPrice          decimal.Decimal  `json:"selling_price" validate:"gt=0,money"`
	DiscountPrice         *decimal.Decimal `json:"discount_price,omitempty" validate:"omitempty,money"`
	InitialStock          int              `json:"initial_stock" validate:"gte=0"`
	LowStockThreshold     int              `json:"low_stock_threshold" validate:"gte=0"`
	CategoryID            string           `json:"category_id" validate:"omitempty,uuid"`
	SupplierID            string           `json:"supplier_id" validate:"omitempty,uuid"`
	Perishable            bool             `json:"perishable"`
	Organic               bool             `json:"organic"`
	RequiresRefrigeration bool             `json:"requires_refrigeration"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock ni costo).
type UpdateProductRequest struct {
	Name                  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit                  *string          `json:"unit" validate:"omitempty,max=20"`
	SellingPrice          *decimal.Decimal `json:"selling_price" validate:"omitempty,money"`
	DiscountPrice         *decimal.Decimal `json:"discount_price" validate:"omitempty,money"`
	ClearDiscount         bool             `json:"clear_discount"`
	LowStockThreshold     *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	CategoryID            *string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID            *string          `json:"supplier_id" validate:"omitempty,uuid"`
	Active                *bool            `json:"active"`
	Perishable            *bool            `json:"perishable"`
	Organic               *bool            `json:"organic"`
	RequiresRefrigeration *bool            `json:"requires_refrigeration"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	SKU                   string           `json:"sku"`
	Unit                  string           `json:"unit"`
	CostPrice             decimal.Decimal  `json:"cost_price"`
	SellingPrice          decimal.Decimal  `json:"selling_price"`
	DiscountPrice         *decimal.Decimal `json:"discount_price,omitempty"`
	EffectivePrice        decimal.Decimal  `json:"effective_price"`
	CurrentStock          int              `json:"current_stock"`
	LowStockThreshold     int              `json:"low_stock_threshold"`
	LowStock              bool             `json:"low_stock"`
	CategoryID            string           `json:"category_id,omitempty"`
	SupplierID            string           `json:"supplier_id,omitempty"`
	Active                bool             `json:"active"`
	Perishable            bool             `json:"perishable"`
	Organic               bool             `json:"organic"`
	RequiresRefrigeration bool             `json:"requires_refrigeration"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductListQuery filtros de GET /api/products.
type ProductListQuery struct {
	Search     string `query:"search"`
	CategoryID string `query:"category_id"`
	SupplierID string `query:"supplier_id"`
	ActiveOnly bool   `query:"active_only"`
	PageRequest
}
