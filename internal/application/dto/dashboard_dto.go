package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Contiene los KPIs del día y del mes en curso, más el Top-5 de productos del mes.
type DashboardSummaryDTO struct {
	// Métricas del día actual (00:00 – ahora)
	TodaySales  decimal.Decimal `json:"today_sales"`
	TodayOrders int             `json:"today_orders"`
	TodayMargin decimal.Decimal `json:"today_margin"` // ventas - costo

	// Métricas del mes en curso (día 1 – hoy)
	MonthlySales    decimal.Decimal `json:"monthly_sales"`
	MonthlyOrders   int             `json:"monthly_orders"`
	MonthlyMargin   decimal.Decimal `json:"monthly_margin"`
	MonthlyRefunded decimal.Decimal `json:"monthly_refunded"`

	TopProducts []TopProductDTO `json:"top_products"`

	LowStockCount int    `json:"low_stock_count"`
	DateLabel     string `json:"date_label"` // ej: "Octubre 2026"
}

// TopProductDTO resumen de un producto para el widget del dashboard.
type TopProductDTO struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
