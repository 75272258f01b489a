package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/application/usecase"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	admin   = domain.Session{UserID: "admin-1", Role: entity.RoleAdmin}
	manager = domain.Session{UserID: "manager-1", Role: entity.RoleManager}
	cashier = domain.Session{UserID: "cashier-1", Role: entity.RoleCashier}
)

type catalogFixture struct {
	store      *memory.Store
	products   *memory.ProductRepository
	orders     *memory.OrderRepository
	activity   *memory.ActivityRepository
	categories *memory.CategoryRepository
	suppliers  *memory.SupplierRepository
	uc         *usecase.ProductUseCase
	catalog    *usecase.CatalogUseCase
}

func newCatalogFixture() *catalogFixture {
	s := memory.NewStore()
	f := &catalogFixture{
		store:      s,
		products:   memory.NewProductRepository(s),
		orders:     memory.NewOrderRepository(s),
		activity:   memory.NewActivityRepository(s),
		categories: memory.NewCategoryRepository(s),
		suppliers:  memory.NewSupplierRepository(s),
	}
	f.uc = usecase.NewProductUseCase(memory.NewTxRunner(s), f.products, f.orders, f.categories, f.suppliers, nil)
	f.catalog = usecase.NewCatalogUseCase(f.categories, f.suppliers)
	return f
}

func (f *catalogFixture) activities(t *testing.T, productID, typ string) []*entity.Activity {
	t.Helper()
	items, _, err := f.activity.List(context.Background(), repository.ActivityFilter{ProductID: productID, Type: typ, Limit: 100})
	require.NoError(t, err)
	return items
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func leche() dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Name:              "Leche Entera 1L",
		SKU:               "LEC-001",
		CostPrice:         dec("2.10"),
		SellingPrice:      dec("3.50"),
		InitialStock:      24,
		LowStockThreshold: 6,
		Perishable:        true,
	}
}

// ─── Create ──────────────────────────────────────────────────────────────────

func TestProductCreate_StockInicialRegistraActividad(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	out, err := f.uc.Create(ctx, manager, leche())
	require.NoError(t, err)
	assert.Equal(t, 24, out.CurrentStock)
	assert.Equal(t, "und", out.Unit)
	assert.True(t, out.Active)
	assert.True(t, out.EffectivePrice.Equal(dec("3.50")))

	acts := f.activities(t, out.ID, entity.ActivityStockIn)
	require.Len(t, acts, 1)
	assert.Equal(t, 24, acts[0].Quantity)
	assert.Equal(t, 24, acts[0].StockChange)
	assert.True(t, acts[0].Amount.Equal(dec("-50.40")), "amount = -(24 × 2.10), got %s", acts[0].Amount)
}

func TestProductCreate_SinStockNoRegistraActividad(t *testing.T) {
	f := newCatalogFixture()
	in := leche()
	in.InitialStock = 0

	out, err := f.uc.Create(context.Background(), admin, in)
	require.NoError(t, err)
	assert.Empty(t, f.activities(t, out.ID, ""))
}

func TestProductCreate_SKUDuplicado(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, admin, leche())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductCreate_SKUDistingueMayusculas(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	otra := leche()
	otra.SKU = "lec-001"
	out, err := f.uc.Create(ctx, admin, otra)
	require.NoError(t, err, "UNIQUE (sku) en PostgreSQL distingue mayúsculas")
	assert.Equal(t, "lec-001", out.SKU)
}

func TestProductCreate_CajeroNoPuedeCrear(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.uc.Create(context.Background(), cashier, leche())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProductCreate_Validaciones(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateProductRequest)
		field  string
	}{
		{"sin nombre", func(r *dto.CreateProductRequest) { r.Name = "" }, "name"},
		{"precio cero", func(r *dto.CreateProductRequest) { r.SellingPrice = decimal.Zero }, "selling_price"},
		{"precio con tres decimales", func(r *dto.CreateProductRequest) { r.SellingPrice = dec("3.505") }, "selling_price"},
		{"costo fuera de rango", func(r *dto.CreateProductRequest) { r.CostPrice = decimal.New(1, 12) }, "cost_price"},
		{"descuento mayor al precio", func(r *dto.CreateProductRequest) { r.DiscountPrice = decPtr("4.00") }, "discount_price"},
		{"categoría inexistente", func(r *dto.CreateProductRequest) { r.CategoryID = "11111111-1111-1111-1111-111111111111" }, "category_id"},
		{"proveedor inexistente", func(r *dto.CreateProductRequest) { r.SupplierID = "22222222-2222-2222-2222-222222222222" }, "supplier_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			in := leche()
			tt.mutate(&in)
			_, err := f.uc.Create(context.Background(), admin, in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

// ─── Update ──────────────────────────────────────────────────────────────────

func TestProductUpdate_CambioDePrecioRegistraActividad(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	out, err := f.uc.Update(ctx, manager, created.ID, dto.UpdateProductRequest{DiscountPrice: decPtr("3.00")})
	require.NoError(t, err)
	assert.True(t, out.EffectivePrice.Equal(dec("3.00")))
	assert.Equal(t, 24, out.CurrentStock)

	acts := f.activities(t, created.ID, entity.ActivityPriceChange)
	require.Len(t, acts, 1)
	assert.True(t, acts[0].Amount.Equal(dec("-0.50")), "got %s", acts[0].Amount)
	assert.Equal(t, "descuento ninguno -> 3.00", acts[0].Note)
	assert.Equal(t, manager.UserID, acts[0].UserID)
}

func TestProductUpdate_SinCambioDePrecioNoRegistraActividad(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	name := "Leche Entera 1 Litro"
	same := dec("3.50")
	out, err := f.uc.Update(ctx, admin, created.ID, dto.UpdateProductRequest{Name: &name, SellingPrice: &same})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.Empty(t, f.activities(t, created.ID, entity.ActivityPriceChange))
}

func TestProductUpdate_QuitarDescuento(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	in := leche()
	in.DiscountPrice = decPtr("3.00")
	created, err := f.uc.Create(ctx, admin, in)
	require.NoError(t, err)

	out, err := f.uc.Update(ctx, admin, created.ID, dto.UpdateProductRequest{ClearDiscount: true})
	require.NoError(t, err)
	assert.Nil(t, out.DiscountPrice)
	assert.True(t, out.EffectivePrice.Equal(dec("3.50")))

	acts := f.activities(t, created.ID, entity.ActivityPriceChange)
	require.Len(t, acts, 1)
	assert.True(t, acts[0].Amount.Equal(dec("0.50")))
}

func TestProductUpdate_DescuentoInvalidoNoPersiste(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, admin, created.ID, dto.UpdateProductRequest{DiscountPrice: decPtr("9.99")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discount_price", verr.Field)

	p, err := f.products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, p.DiscountPrice)
}

func TestProductUpdate_FalloDeActividadRevierteElPrecio(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	f.store.FailOn("activity.create", assert.AnError)
	_, err = f.uc.Update(ctx, admin, created.ID, dto.UpdateProductRequest{SellingPrice: decPtr("4.00")})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	f.store.ClearFailures()

	p, err := f.products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, p.SellingPrice.Equal(dec("3.50")))
}

func TestProductUpdate_NoEncontrado(t *testing.T) {
	f := newCatalogFixture()
	name := "x"
	_, err := f.uc.Update(context.Background(), admin, "no-existe", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── List / Delete ───────────────────────────────────────────────────────────

func TestProductList_BusquedaSinTildes(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)
	cafe := leche()
	cafe.Name, cafe.SKU = "Café Molido 500g", "CAF-500"
	_, err = f.uc.Create(ctx, admin, cafe)
	require.NoError(t, err)

	out, err := f.uc.List(ctx, cashier, dto.ProductListQuery{Search: "cafe"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "CAF-500", out.Items[0].SKU)
	assert.Equal(t, 1, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)
}

func TestProductList_SinSesion(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.uc.List(context.Background(), domain.Session{}, dto.ProductListQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestProductDelete_ConVentasEsConflicto(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(ctx, &entity.Order{
		ID:            "order-1",
		Items:         []entity.OrderItem{{ProductID: created.ID, ProductName: created.Name, Quantity: 1, Subtotal: dec("3.50")}},
		TotalAmount:   dec("3.50"),
		PaymentMethod: entity.PaymentCash,
		Status:        entity.OrderStatusCompleted,
		CreatedAt:     time.Now(),
	}))

	err = f.uc.Delete(ctx, admin, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProductDelete_SoloAdmin(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, admin, leche())
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, manager, created.ID), domain.ErrForbidden)
	require.NoError(t, f.uc.Delete(ctx, admin, created.ID))
	_, err = f.uc.GetByID(ctx, admin, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
