package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository implementación en memoria de repository.OrderRepository.
type OrderRepository struct {
	s    *Store
	inTx bool
}

// NewOrderRepository crea el repositorio fuera de transacción.
func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{s: s}
}

func (r *OrderRepository) Create(_ context.Context, o *entity.Order) error {
	return r.s.view(r.inTx, "order.create", func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		if o.RequestID != "" {
			for _, other := range st.orders {
				if other.RequestID == o.RequestID {
					return domain.ErrDuplicateRequest
				}
			}
		}
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.view(r.inTx, "order.get", func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyOrder(o)
		return nil
	})
	return out, err
}

// GetByIDForUpdate en memoria el lock lo da la transacción que serializa el store.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) GetByRequestID(_ context.Context, requestID string) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.view(r.inTx, "order.get", func(st *state) error {
		for _, o := range st.orders {
			if o.RequestID != "" && o.RequestID == requestID {
				out = copyOrder(o)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *OrderRepository) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var (
		out   []*entity.Order
		total int
	)
	err := r.s.view(r.inTx, "order.list", func(st *state) error {
		var all []*entity.Order
		for _, o := range st.orders {
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.PaymentMethod != "" && o.PaymentMethod != f.PaymentMethod {
				continue
			}
			if f.From != nil && o.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !o.CreatedAt.Before(*f.To) {
				continue
			}
			all = append(all, copyOrder(o))
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *OrderRepository) MarkRefunded(_ context.Context, o *entity.Order) error {
	return r.s.view(r.inTx, "order.mark_refunded", func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = o.Status
		cur.RefundReason = o.RefundReason
		cur.RefundedBy = o.RefundedBy
		cur.UpdatedAt = o.UpdatedAt
		if o.RefundedAt != nil {
			t := *o.RefundedAt
			cur.RefundedAt = &t
		}
		return nil
	})
}

func (r *OrderRepository) ExistsForProduct(_ context.Context, productID string) (bool, error) {
	var found bool
	err := r.s.view(r.inTx, "order.list", func(st *state) error {
		for _, o := range st.orders {
			for _, it := range o.Items {
				if it.ProductID == productID {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}
