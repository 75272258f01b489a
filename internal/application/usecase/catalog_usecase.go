package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/validator"
)

// CatalogUseCase CRUD de categorías y proveedores.
// Lectura para cualquier sesión; escritura para admin y manager.
type CatalogUseCase struct {
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(categories repository.CategoryRepository, suppliers repository.SupplierRepository) *CatalogUseCase {
	return &CatalogUseCase{categories: categories, suppliers: suppliers}
}

// ─── Categorías ──────────────────────────────────────────────────────────────

// CreateCategory crea una categoría. El nombre es único (sin distinguir mayúsculas).
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, sess domain.Session, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	name := strings.TrimSpace(in.Name)
	if err := uc.ensureCategoryName(ctx, name, ""); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, domain.WrapPersistence("categories.create", err)
	}
	return toCategoryResponse(c), nil
}

// GetCategory obtiene una categoría por ID.
func (uc *CatalogUseCase) GetCategory(ctx context.Context, sess domain.Session, id string) (*dto.CategoryResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("categories.get", err)
	}
	return toCategoryResponse(c), nil
}

// UpdateCategory reemplaza nombre y descripción.
func (uc *CatalogUseCase) UpdateCategory(ctx context.Context, sess domain.Session, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("categories.get", err)
	}
	name := strings.TrimSpace(in.Name)
	if err := uc.ensureCategoryName(ctx, name, id); err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	c.UpdatedAt = time.Now()
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, domain.WrapPersistence("categories.update", err)
	}
	return toCategoryResponse(c), nil
}

// ListCategories lista categorías ordenadas por nombre.
func (uc *CatalogUseCase) ListCategories(ctx context.Context, sess domain.Session, page dto.PageRequest) ([]dto.CategoryResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.categories.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.WrapPersistence("categories.list", err)
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// DeleteCategory elimina la categoría; los productos quedan sin categoría.
func (uc *CatalogUseCase) DeleteCategory(ctx context.Context, sess domain.Session, id string) error {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return err
	}
	return domain.WrapPersistence("categories.delete", uc.categories.Delete(ctx, id))
}

func (uc *CatalogUseCase) ensureCategoryName(ctx context.Context, name, selfID string) error {
	existing, err := uc.categories.GetByName(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.WrapPersistence("categories.get_by_name", err)
	}
	if existing != nil && existing.ID != selfID {
		return domain.ErrDuplicate
	}
	return nil
}

// ─── Proveedores ─────────────────────────────────────────────────────────────

// CreateSupplier crea un proveedor.
func (uc *CatalogUseCase) CreateSupplier(ctx context.Context, sess domain.Session, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	now := time.Now()
	s := &entity.Supplier{ID: uuid.New().String(), CreatedAt: now}
	applySupplier(s, in, now)
	if err := uc.suppliers.Create(ctx, s); err != nil {
		return nil, domain.WrapPersistence("suppliers.create", err)
	}
	return toSupplierResponse(s), nil
}

// GetSupplier obtiene un proveedor por ID.
func (uc *CatalogUseCase) GetSupplier(ctx context.Context, sess domain.Session, id string) (*dto.SupplierResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	s, err := uc.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("suppliers.get", err)
	}
	return toSupplierResponse(s), nil
}

// UpdateSupplier reemplaza los datos de contacto.
func (uc *CatalogUseCase) UpdateSupplier(ctx context.Context, sess domain.Session, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	s, err := uc.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("suppliers.get", err)
	}
	applySupplier(s, in, time.Now())
	if err := uc.suppliers.Update(ctx, s); err != nil {
		return nil, domain.WrapPersistence("suppliers.update", err)
	}
	return toSupplierResponse(s), nil
}

// ListSuppliers lista proveedores ordenados por nombre.
func (uc *CatalogUseCase) ListSuppliers(ctx context.Context, sess domain.Session, page dto.PageRequest) ([]dto.SupplierResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.suppliers.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.WrapPersistence("suppliers.list", err)
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

// DeleteSupplier elimina el proveedor; los productos quedan sin proveedor.
func (uc *CatalogUseCase) DeleteSupplier(ctx context.Context, sess domain.Session, id string) error {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return err
	}
	return domain.WrapPersistence("suppliers.delete", uc.suppliers.Delete(ctx, id))
}

func applySupplier(s *entity.Supplier, in dto.SupplierRequest, now time.Time) {
	s.Name = strings.TrimSpace(in.Name)
	s.ContactName = strings.TrimSpace(in.ContactName)
	s.Email = strings.TrimSpace(in.Email)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Address = strings.TrimSpace(in.Address)
	s.UpdatedAt = now
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
