package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/postgres"
)

var productCols = []string{
	"id", "name", "sku", "unit", "cost_price", "selling_price", "discount_price", "current_stock",
	"low_stock_threshold", "category_id", "supplier_id", "active", "perishable", "organic",
	"requires_refrigeration", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func productRow(rows *pgxmock.Rows, id, name string, stock int) *pgxmock.Rows {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(id, name, "SKU-"+id, "und", decimal.NewFromInt(2), decimal.NewFromInt(5), nil, stock,
		1, nil, nil, true, false, false, false, now, now)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bloqueo de filas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetManyForUpdate_BloqueaEnOrdenAscendente(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	rows := mock.NewRows(productCols)
	productRow(rows, "a", "Arroz", 4)
	productRow(rows, "c", "Café", 9)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`)).
		WithArgs([]string{"a", "c"}).
		WillReturnRows(rows)

	list, err := repo.GetManyForUpdate(context.Background(), []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, 4, list[0].CurrentStock)
	assert.Nil(t, list[0].DiscountPrice)
	assert.Equal(t, "c", list[1].ID)
}

func TestGetManyForUpdate_NoModificaLaEntrada(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs([]string{"a", "b"}).
		WillReturnRows(mock.NewRows(productCols))

	ids := []string{"b", "a"}
	_, err := repo.GetManyForUpdate(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestGetManyForUpdate_SinIDsNoConsulta(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	list, err := repo.GetManyForUpdate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ──────────────────────────────────────────────────────────────────────────────
// Descuento con guarda
// ──────────────────────────────────────────────────────────────────────────────

const decrementSQL = `WHERE id = $1 AND current_stock >= $2`

func TestDecrementStock_DescuentaConGuarda(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
		WithArgs("a", 3).
		WillReturnRows(mock.NewRows([]string{"current_stock"}).AddRow(7))

	stock, ok, err := repo.DecrementStock(context.Background(), "a", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, stock)
}

func TestDecrementStock_SinFilasEsStockInsuficiente(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
		WithArgs("a", 50).
		WillReturnRows(mock.NewRows([]string{"current_stock"}))

	stock, ok, err := repo.DecrementStock(context.Background(), "a", 50)
	require.NoError(t, err, "la guarda sin filas no es un error de almacenamiento")
	assert.False(t, ok)
	assert.Zero(t, stock)
}

func TestDecrementStock_ErrorDeConexion(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	boom := errors.New("conexión cerrada")
	mock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
		WithArgs("a", 1).
		WillReturnError(boom)

	_, ok, err := repo.DecrementStock(context.Background(), "a", 1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestIncrementStock_ProductoInexistente(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SET current_stock = current_stock + $2`)).
		WithArgs("x", 2).
		WillReturnRows(mock.NewRows([]string{"current_stock"}))

	_, err := repo.IncrementStock(context.Background(), "x", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Constraints
// ──────────────────────────────────────────────────────────────────────────────

func TestProductCreate_SKUDuplicado(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	mock.ExpectExec("INSERT INTO products").
		WillReturnError(uniqueViolation("products_sku_key"))

	err := repo.Create(context.Background(), newProduct("a"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
