package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/validator"
)

// ProductUseCase casos de uso CRUD para productos. Stock y costo se manejan vía ventas y ajustes.
type ProductUseCase struct {
	txRunner     TxRunner
	repo         repository.ProductRepository
	orderRepo    repository.OrderRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	publisher    ActivityPublisher
}

// NewProductUseCase construye el caso de uso. publisher puede ser nil.
func NewProductUseCase(
	txRunner TxRunner,
	repo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	publisher ActivityPublisher,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		orderRepo:    orderRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		publisher:    publisher,
	}
}

// Create crea un nuevo producto. Un stock inicial mayor a cero queda registrado como stock_in.
func (uc *ProductUseCase) Create(ctx context.Context, sess domain.Session, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	if err := validateDiscount(in.DiscountPrice, in.SellingPrice); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.WrapPersistence("products.get_by_sku", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "und"
	}

	now := time.Now()
	product := &entity.Product{
		ID:                    uuid.New().String(),
		Name:                  strings.TrimSpace(in.Name),
		SKU:                   strings.TrimSpace(in.SKU),
		Unit:                  unit,
		CostPrice:             in.CostPrice,
		SellingPrice:          in.SellingPrice,
		DiscountPrice:         in.DiscountPrice,
		CurrentStock:          in.InitialStock,
		LowStockThreshold:     in.LowStockThreshold,
		CategoryID:            in.CategoryID,
		SupplierID:            in.SupplierID,
		Active:                true,
		Perishable:            in.Perishable,
		Organic:               in.Organic,
		RequiresRefrigeration: in.RequiresRefrigeration,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	var activities []*entity.Activity
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, activityRepo repository.ActivityRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.CurrentStock == 0 {
			return nil
		}
		a := &entity.Activity{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			ProductName: product.Name,
			UserID:      sess.UserID,
			Type:        entity.ActivityStockIn,
			Quantity:    product.CurrentStock,
			StockChange: product.CurrentStock,
			Amount:      product.CostPrice.Mul(decimal.NewFromInt(int64(product.CurrentStock))).Neg(),
			Note:        "Stock inicial",
			CreatedAt:   now,
		}
		activities = append(activities, a)
		return activityRepo.Create(ctx, a)
	})
	if err != nil {
		return nil, domain.WrapPersistence("products.create", err)
	}
	uc.publish(activities)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, sess domain.Session, id string) (*dto.ProductResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("products.get", err)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar costo ni stock; un cambio de precio de venta
// o de descuento deja una actividad price_change en la misma transacción.
func (uc *ProductUseCase) Update(ctx context.Context, sess domain.Session, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	if in.SellingPrice != nil && !in.SellingPrice.IsPositive() {
		return nil, domain.NewValidationError("selling_price", "debe ser mayor que 0")
	}
	var catID, supID string
	if in.CategoryID != nil {
		catID = *in.CategoryID
	}
	if in.SupplierID != nil {
		supID = *in.SupplierID
	}
	if err := uc.checkRefs(ctx, catID, supID); err != nil {
		return nil, err
	}

	var (
		updated    *entity.Product
		activities []*entity.Activity
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, activityRepo repository.ActivityRepository) error {
		locked, err := productRepo.GetManyForUpdate(ctx, []string{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.ErrNotFound
		}
		p := locked[0]
		oldPrice := p.EffectivePrice()
		oldSelling := p.SellingPrice
		oldDiscount := p.DiscountPrice

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Unit != nil {
			p.Unit = *in.Unit
		}
		if in.SellingPrice != nil {
			p.SellingPrice = *in.SellingPrice
		}
		if in.ClearDiscount {
			p.DiscountPrice = nil
		} else if in.DiscountPrice != nil {
			d := *in.DiscountPrice
			p.DiscountPrice = &d
		}
		if err := validateDiscount(p.DiscountPrice, p.SellingPrice); err != nil {
			return err
		}
		if in.LowStockThreshold != nil {
			p.LowStockThreshold = *in.LowStockThreshold
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
		}
		if in.SupplierID != nil {
			p.SupplierID = *in.SupplierID
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		if in.Perishable != nil {
			p.Perishable = *in.Perishable
		}
		if in.Organic != nil {
			p.Organic = *in.Organic
		}
		if in.RequiresRefrigeration != nil {
			p.RequiresRefrigeration = *in.RequiresRefrigeration
		}
		now := time.Now()
		p.UpdatedAt = now
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}

		if !oldSelling.Equal(p.SellingPrice) || !sameDiscount(oldDiscount, p.DiscountPrice) {
			a := &entity.Activity{
				ID:          uuid.New().String(),
				ProductID:   p.ID,
				ProductName: p.Name,
				UserID:      sess.UserID,
				Type:        entity.ActivityPriceChange,
				Amount:      p.EffectivePrice().Sub(oldPrice),
				Note:        priceNote(oldSelling, p.SellingPrice, oldDiscount, p.DiscountPrice),
				CreatedAt:   now,
			}
			if err := activityRepo.Create(ctx, a); err != nil {
				return err
			}
			activities = append(activities, a)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, domain.WrapPersistence("products.update", err)
	}
	uc.publish(activities)
	return toProductResponse(updated), nil
}

// List lista productos con búsqueda (nombre o SKU, sin tildes) y filtros.
func (uc *ProductUseCase) List(ctx context.Context, sess domain.Session, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: q.CategoryID,
		SupplierID: q.SupplierID,
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, domain.WrapPersistence("products.list", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Delete elimina un producto. Si aparece en alguna orden se rechaza con ErrConflict
// (hay que desactivarlo para conservar el historial).
func (uc *ProductUseCase) Delete(ctx context.Context, sess domain.Session, id string) error {
	if err := sess.RequireRole(entity.RoleAdmin); err != nil {
		return err
	}
	used, err := uc.orderRepo.ExistsForProduct(ctx, id)
	if err != nil {
		return domain.WrapPersistence("products.delete", err)
	}
	if used {
		return domain.ErrConflict
	}
	return domain.WrapPersistence("products.delete", uc.repo.Delete(ctx, id))
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, categoryID, supplierID string) error {
	if categoryID != "" {
		if _, err := uc.categoryRepo.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("category_id", "la categoría no existe")
			}
			return domain.WrapPersistence("categories.get", err)
		}
	}
	if supplierID != "" {
		if _, err := uc.supplierRepo.GetByID(ctx, supplierID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("supplier_id", "el proveedor no existe")
			}
			return domain.WrapPersistence("suppliers.get", err)
		}
	}
	return nil
}

func (uc *ProductUseCase) publish(activities []*entity.Activity) {
	if uc.publisher != nil && len(activities) > 0 {
		uc.publisher.Publish(activities)
	}
}

func validateDiscount(discount *decimal.Decimal, selling decimal.Decimal) error {
	if discount == nil {
		return nil
	}
	if !discount.IsPositive() || discount.GreaterThanOrEqual(selling) {
		return domain.NewValidationError("discount_price", "debe ser mayor que 0 y menor que el precio de venta")
	}
	return nil
}

func sameDiscount(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func priceNote(oldSelling, newSelling decimal.Decimal, oldDiscount, newDiscount *decimal.Decimal) string {
	var parts []string
	if !oldSelling.Equal(newSelling) {
		parts = append(parts, fmt.Sprintf("precio %s -> %s", oldSelling.StringFixed(2), newSelling.StringFixed(2)))
	}
	if !sameDiscount(oldDiscount, newDiscount) {
		parts = append(parts, fmt.Sprintf("descuento %s -> %s", fmtDiscount(oldDiscount), fmtDiscount(newDiscount)))
	}
	return strings.Join(parts, "; ")
}

func fmtDiscount(d *decimal.Decimal) string {
	if d == nil {
		return "ninguno"
	}
	return d.StringFixed(2)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		SKU:                   p.SKU,
		Unit:                  p.Unit,
		CostPrice:             p.CostPrice,
		SellingPrice:          p.SellingPrice,
		DiscountPrice:         p.DiscountPrice,
		EffectivePrice:        p.EffectivePrice(),
		CurrentStock:          p.CurrentStock,
		LowStockThreshold:     p.LowStockThreshold,
		LowStock:              p.IsLowStock(),
		CategoryID:            p.CategoryID,
		SupplierID:            p.SupplierID,
		Active:                p.Active,
		Perishable:            p.Perishable,
		Organic:               p.Organic,
		RequiresRefrigeration: p.RequiresRefrigeration,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}
