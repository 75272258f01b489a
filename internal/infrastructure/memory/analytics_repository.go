package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepository)(nil)

// AnalyticsRepository agregaciones del dashboard sobre el store en memoria.
type AnalyticsRepository struct {
	s *Store
}

// NewAnalyticsRepository crea el repositorio.
func NewAnalyticsRepository(s *Store) *AnalyticsRepository {
	return &AnalyticsRepository{s: s}
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (r *AnalyticsRepository) GetSalesMetrics(_ context.Context, start, end time.Time) (*repository.SalesMetrics, error) {
	m := &repository.SalesMetrics{Revenue: decimal.Zero, Cost: decimal.Zero, RefundedAmount: decimal.Zero}
	err := r.s.view(false, "analytics.sales", func(st *state) error {
		for _, o := range st.orders {
			if o.Status == entity.OrderStatusCompleted && inRange(o.CreatedAt, start, end) {
				m.OrderCount++
				m.Revenue = m.Revenue.Add(o.TotalAmount)
				for _, it := range o.Items {
					if p, ok := st.products[it.ProductID]; ok {
						m.Cost = m.Cost.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
					}
				}
			}
			if o.Status == entity.OrderStatusRefunded && o.RefundedAt != nil && inRange(*o.RefundedAt, start, end) {
				m.RefundedAmount = m.RefundedAmount.Add(o.TotalAmount)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *AnalyticsRepository) GetTopProducts(_ context.Context, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	var out []repository.TopProductResult
	err := r.s.view(false, "analytics.top", func(st *state) error {
		acc := map[string]*repository.TopProductResult{}
		for _, o := range st.orders {
			if o.Status != entity.OrderStatusCompleted || !inRange(o.CreatedAt, start, end) {
				continue
			}
			for _, it := range o.Items {
				t, ok := acc[it.ProductID]
				if !ok {
					t = &repository.TopProductResult{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
					if p, found := st.products[it.ProductID]; found {
						t.SKU = p.SKU
						t.ProductName = p.Name
					}
					acc[it.ProductID] = t
				}
				t.QuantitySold += it.Quantity
				t.Revenue = t.Revenue.Add(it.Subtotal)
			}
		}
		for _, t := range acc {
			out = append(out, *t)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].Revenue.Equal(out[j].Revenue) {
				return out[i].Revenue.GreaterThan(out[j].Revenue)
			}
			return out[i].ProductID < out[j].ProductID
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}
