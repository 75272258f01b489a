package memory

import (
	"context"

	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks con repositorios atados a una "transacción" del store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run transacción de inventario (ajustes, cambios de precio).
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	activityRepo repository.ActivityRepository,
) error) error {
	return r.s.tx(ctx, func() error {
		return fn(&ProductRepository{s: r.s, inTx: true}, &ActivityRepository{s: r.s, inTx: true})
	})
}

// RunCheckout transacción de caja (ventas y devoluciones).
func (r *TxRunner) RunCheckout(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	activityRepo repository.ActivityRepository,
) error) error {
	return r.s.tx(ctx, func() error {
		return fn(
			&ProductRepository{s: r.s, inTx: true},
			&OrderRepository{s: r.s, inTx: true},
			&ActivityRepository{s: r.s, inTx: true},
		)
	})
}
