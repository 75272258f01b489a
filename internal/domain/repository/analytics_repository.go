package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesMetrics resultado crudo de ventas en un período.
type SalesMetrics struct {
	OrderCount     int
	Revenue        decimal.Decimal // órdenes completed
	Cost           decimal.Decimal // unidades vendidas × costo actual del producto
	RefundedAmount decimal.Decimal // órdenes refunded (positivo)
}

// TopProductResult producto con mayor ingreso del período.
type TopProductResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	QuantitySold int
	Revenue      decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	// GetSalesMetrics agrega las órdenes creadas entre start y end.
	GetSalesMetrics(ctx context.Context, start, end time.Time) (*SalesMetrics, error)

	// GetTopProducts devuelve los `limit` productos con mayor ingreso (solo órdenes completed).
	GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProductResult, error)
}
