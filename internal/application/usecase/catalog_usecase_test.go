package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
)

func TestCategory_CrearYListar(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.catalog.CreateCategory(ctx, manager, dto.CategoryRequest{Name: "Panadería"})
	require.NoError(t, err)
	_, err = f.catalog.CreateCategory(ctx, manager, dto.CategoryRequest{Name: "Lácteos", Description: "leche y derivados"})
	require.NoError(t, err)

	list, err := f.catalog.ListCategories(ctx, cashier, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Lácteos", list[0].Name)
}

func TestCategory_NombreDuplicado(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.catalog.CreateCategory(ctx, admin, dto.CategoryRequest{Name: "Aseo"})
	require.NoError(t, err)

	_, err = f.catalog.CreateCategory(ctx, admin, dto.CategoryRequest{Name: "aseo"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategory_RenombrarASiMismaPermitido(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c, err := f.catalog.CreateCategory(ctx, admin, dto.CategoryRequest{Name: "Frutas"})
	require.NoError(t, err)

	out, err := f.catalog.UpdateCategory(ctx, admin, c.ID, dto.CategoryRequest{Name: "Frutas", Description: "frescas"})
	require.NoError(t, err)
	assert.Equal(t, "frescas", out.Description)
}

func TestCategory_BorrarDejaProductoSinCategoria(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	c, err := f.catalog.CreateCategory(ctx, admin, dto.CategoryRequest{Name: "Lácteos"})
	require.NoError(t, err)
	in := leche()
	in.CategoryID = c.ID
	p, err := f.uc.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, c.ID, p.CategoryID)

	require.NoError(t, f.catalog.DeleteCategory(ctx, admin, c.ID))
	got, err := f.uc.GetByID(ctx, cashier, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}

func TestCategory_CajeroNoEscribe(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.catalog.CreateCategory(context.Background(), cashier, dto.CategoryRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSupplier_CrudCompleto(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	s, err := f.catalog.CreateSupplier(ctx, manager, dto.SupplierRequest{Name: "Lácteos del Valle", Email: "ventas@valle.co"})
	require.NoError(t, err)

	out, err := f.catalog.UpdateSupplier(ctx, manager, s.ID, dto.SupplierRequest{Name: "Lácteos del Valle S.A.", Phone: "555-0101"})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", out.Phone)
	assert.Empty(t, out.Email)

	got, err := f.catalog.GetSupplier(ctx, cashier, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lácteos del Valle S.A.", got.Name)

	require.NoError(t, f.catalog.DeleteSupplier(ctx, admin, s.ID))
	_, err = f.catalog.GetSupplier(ctx, cashier, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupplier_EmailInvalido(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.catalog.CreateSupplier(context.Background(), admin, dto.SupplierRequest{Name: "X", Email: "no-es-email"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}
