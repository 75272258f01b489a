package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetSalesMetrics ingresos y costo de las órdenes completed creadas en [start, end),
// más el monto devuelto en el período (por fecha de devolución).
// El costo usa el costo promedio actual del producto; productos eliminados suman 0.
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, start, end time.Time) (*repository.SalesMetrics, error) {
	const query = `
	SELECT
	    (SELECT count(*)
	       FROM orders o
	      WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2)          AS order_count,
	    (SELECT COALESCE(SUM(o.total_amount), 0)
	       FROM orders o
	      WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2)          AS revenue,
	    (SELECT COALESCE(SUM(oi.quantity * p.cost_price), 0)
	       FROM orders o
	       JOIN order_items oi ON oi.order_id = o.id
	       JOIN products    p  ON p.id        = oi.product_id
	      WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2)          AS cost,
	    (SELECT COALESCE(SUM(o.total_amount), 0)
	       FROM orders o
	      WHERE o.status = 'refunded' AND o.refunded_at >= $1 AND o.refunded_at < $2)         AS refunded`

	var m repository.SalesMetrics
	if err := r.pool.QueryRow(ctx, query, start, end).Scan(&m.OrderCount, &m.Revenue, &m.Cost, &m.RefundedAmount); err != nil {
		return nil, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return &m, nil
}

// GetTopProducts los `limit` productos con mayor ingreso en órdenes completed del período.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    oi.product_id,
	    COALESCE(p.sku, '')                        AS sku,
	    COALESCE(p.name, MAX(oi.product_name))     AS product_name,
	    SUM(oi.quantity)                           AS quantity_sold,
	    SUM(oi.subtotal)                           AS revenue
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN products p ON p.id = oi.product_id
	WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2
	GROUP BY oi.product_id, p.sku, p.name
	ORDER BY revenue DESC, oi.product_id
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &row.QuantitySold, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
