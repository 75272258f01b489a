// Package analytics contiene los casos de uso del dashboard de ventas.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // número de productos en el widget del dashboard

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only) y el conteo de
// productos bajo el umbral de stock.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, productRepo repository.ProductRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, productRepo: productRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO (admin y manager).
//
// Cuatro llamadas en paralelo:
//  1. GetSalesMetrics(hoy)         → TodaySales + TodayMargin
//  2. GetSalesMetrics(mes)         → MonthlySales + MonthlyMargin + MonthlyRefunded
//  3. GetTopProducts(mes, top 5)   → TopProducts
//  4. ListLowStock                 → LowStockCount
func (uc *DashboardUseCase) GetSummary(ctx context.Context, sess domain.Session) (*dto.DashboardSummaryDTO, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	now := uc.now()

	// ── Rangos de fecha (fin exclusivo) ───────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type metricsResult struct {
		m   *repository.SalesMetrics
		err error
	}
	type topResult struct {
		items []repository.TopProductResult
		err   error
	}
	type lowResult struct {
		count int
		err   error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)
	lowCh := make(chan lowResult, 1)

	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, todayStart, todayEnd)
		todayCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, monthStart, todayEnd)
		monthCh <- metricsResult{m, err}
	}()
	go func() {
		items, err := uc.analyticsRepo.GetTopProducts(ctx, monthStart, todayEnd, dashboardTopProducts)
		topCh <- topResult{items, err}
	}()
	go func() {
		list, err := uc.productRepo.ListLowStock(ctx)
		lowCh <- lowResult{len(list), err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh
	low := <-lowCh

	if today.err != nil {
		return nil, domain.WrapPersistence("dashboard.today", fmt.Errorf("métricas de hoy: %w", today.err))
	}
	if month.err != nil {
		return nil, domain.WrapPersistence("dashboard.month", fmt.Errorf("métricas del mes: %w", month.err))
	}
	if top.err != nil {
		return nil, domain.WrapPersistence("dashboard.top", fmt.Errorf("top productos: %w", top.err))
	}
	if low.err != nil {
		return nil, domain.WrapPersistence("dashboard.low_stock", fmt.Errorf("stock bajo: %w", low.err))
	}

	topProducts := make([]dto.TopProductDTO, 0, len(top.items))
	for _, t := range top.items {
		topProducts = append(topProducts, dto.TopProductDTO{
			ProductID:    t.ProductID,
			SKU:          t.SKU,
			ProductName:  t.ProductName,
			QuantitySold: t.QuantitySold,
			TotalRevenue: t.Revenue.Round(2),
		})
	}

	return &dto.DashboardSummaryDTO{
		TodaySales:      today.m.Revenue.Round(2),
		TodayOrders:     today.m.OrderCount,
		TodayMargin:     today.m.Revenue.Sub(today.m.Cost).Round(2),
		MonthlySales:    month.m.Revenue.Round(2),
		MonthlyOrders:   month.m.OrderCount,
		MonthlyMargin:   month.m.Revenue.Sub(month.m.Cost).Round(2),
		MonthlyRefunded: month.m.RefundedAmount.Round(2),
		TopProducts:     topProducts,
		LowStockCount:   low.count,
		DateLabel:       monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
