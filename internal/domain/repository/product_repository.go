package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo.
type ProductFilter struct {
	Search     string // nombre o SKU
	CategoryID string
	SupplierID string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de stock son el único camino para modificar CurrentStock.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update no modifica CurrentStock.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error

	// GetManyForUpdate bloquea las filas (SELECT FOR UPDATE) en orden ascendente de ID.
	// Los IDs inexistentes simplemente no aparecen en el resultado.
	GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error)
	// DecrementStock resta qty solo si current_stock >= qty. ok=false si la guarda no se cumplió.
	DecrementStock(ctx context.Context, id string, qty int) (newStock int, ok bool, err error)
	IncrementStock(ctx context.Context, id string, qty int) (newStock int, err error)
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
}
