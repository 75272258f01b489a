package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/textnorm"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct {
	s    *Store
	inTx bool
}

// NewProductRepository crea el repositorio fuera de transacción.
func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{s: s}
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	return r.s.view(r.inTx, "product.create", func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.inTx, "product.get", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyProduct(p)
		return nil
	})
	return out, err
}

func (r *ProductRepository) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.inTx, "product.get", func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = copyProduct(p)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	return r.s.view(r.inTx, "product.update", func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := copyProduct(p)
		upd.CurrentStock = cur.CurrentStock
		upd.CostPrice = cur.CostPrice
		upd.CreatedAt = cur.CreatedAt
		st.products[p.ID] = upd
		return nil
	})
}

func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		out   []*entity.Product
		total int
	)
	err := r.s.view(r.inTx, "product.list", func(st *state) error {
		var all []*entity.Product
		for _, p := range st.products {
			if f.ActiveOnly && !p.Active {
				continue
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			if f.SupplierID != "" && p.SupplierID != f.SupplierID {
				continue
			}
			if f.Search != "" && !textnorm.Contains(p.Name, f.Search) && !textnorm.Contains(p.SKU, f.Search) {
				continue
			}
			all = append(all, copyProduct(p))
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].Name != all[j].Name {
				return all[i].Name < all[j].Name
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *ProductRepository) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.view(r.inTx, "product.list", func(st *state) error {
		for _, p := range st.products {
			if p.Active && p.IsLowStock() {
				out = append(out, copyProduct(p))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			di := out[i].LowStockThreshold - out[i].CurrentStock
			dj := out[j].LowStockThreshold - out[j].CurrentStock
			if di != dj {
				return di > dj
			}
			return out[i].Name < out[j].Name
		})
		return nil
	})
	return out, err
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	return r.s.view(r.inTx, "product.delete", func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}

func (r *ProductRepository) GetManyForUpdate(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.view(r.inTx, "product.lock", func(st *state) error {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if p, ok := st.products[id]; ok {
				out = append(out, copyProduct(p))
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *ProductRepository) DecrementStock(_ context.Context, id string, qty int) (int, bool, error) {
	var (
		newStock int
		ok       bool
	)
	err := r.s.view(r.inTx, "product.decrement", func(st *state) error {
		p, found := st.products[id]
		if !found || p.CurrentStock < qty {
			return nil
		}
		p.CurrentStock -= qty
		newStock, ok = p.CurrentStock, true
		return nil
	})
	return newStock, ok, err
}

func (r *ProductRepository) IncrementStock(_ context.Context, id string, qty int) (int, error) {
	var newStock int
	err := r.s.view(r.inTx, "product.increment", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.CurrentStock += qty
		newStock = p.CurrentStock
		return nil
	})
	return newStock, err
}

func (r *ProductRepository) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.s.view(r.inTx, "product.update_cost", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.CostPrice = cost
		return nil
	})
}
