package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.SupplierRepository = (*SupplierRepository)(nil)
)

// CategoryRepository implementación en memoria de repository.CategoryRepository.
type CategoryRepository struct {
	s *Store
}

// NewCategoryRepository crea el repositorio.
func NewCategoryRepository(s *Store) *CategoryRepository {
	return &CategoryRepository{s: s}
}

func (r *CategoryRepository) Create(_ context.Context, c *entity.Category) error {
	return r.s.view(false, "category.create", func(st *state) error {
		for _, other := range st.categories {
			if strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.view(false, "category.get", func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r *CategoryRepository) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.view(false, "category.get", func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, name) {
				cp := *c
				out = &cp
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *CategoryRepository) Update(_ context.Context, c *entity.Category) error {
	return r.s.view(false, "category.update", func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.categories {
			if other.ID != c.ID && strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepository) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.view(false, "category.list", func(st *state) error {
		all := make([]*entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			cp := *c
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	return r.s.view(false, "category.delete", func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.categories, id)
		for _, p := range st.products {
			if p.CategoryID == id {
				p.CategoryID = ""
			}
		}
		return nil
	})
}

// SupplierRepository implementación en memoria de repository.SupplierRepository.
type SupplierRepository struct {
	s *Store
}

// NewSupplierRepository crea el repositorio.
func NewSupplierRepository(s *Store) *SupplierRepository {
	return &SupplierRepository{s: s}
}

func (r *SupplierRepository) Create(_ context.Context, sp *entity.Supplier) error {
	return r.s.view(false, "supplier.create", func(st *state) error {
		cp := *sp
		st.suppliers[sp.ID] = &cp
		return nil
	})
}

func (r *SupplierRepository) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.s.view(false, "supplier.get", func(st *state) error {
		sp, ok := st.suppliers[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *sp
		out = &cp
		return nil
	})
	return out, err
}

func (r *SupplierRepository) Update(_ context.Context, sp *entity.Supplier) error {
	return r.s.view(false, "supplier.update", func(st *state) error {
		if _, ok := st.suppliers[sp.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *sp
		st.suppliers[sp.ID] = &cp
		return nil
	})
}

func (r *SupplierRepository) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.s.view(false, "supplier.list", func(st *state) error {
		all := make([]*entity.Supplier, 0, len(st.suppliers))
		for _, sp := range st.suppliers {
			cp := *sp
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *SupplierRepository) Delete(_ context.Context, id string) error {
	return r.s.view(false, "supplier.delete", func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.suppliers, id)
		for _, p := range st.products {
			if p.SupplierID == id {
				p.SupplierID = ""
			}
		}
		return nil
	})
}
