package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/postgres"
)

var orderCols = []string{
	"id", "request_id", "total_amount", "payment_method", "status", "cashier_id", "refund_reason",
	"refunded_at", "refunded_by", "created_at", "updated_at",
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func newProduct(id string) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID: id, Name: "Leche", SKU: "LEC-1", Unit: "und",
		CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(3),
		CurrentStock: 5, Active: true, CreatedAt: now, UpdatedAt: now,
	}
}

func newOrder() *entity.Order {
	now := time.Now()
	return &entity.Order{
		ID:            "o-1",
		RequestID:     "req-1",
		TotalAmount:   decimal.RequireFromString("12.50"),
		PaymentMethod: entity.PaymentCash,
		Status:        entity.OrderStatusCompleted,
		CashierID:     "cashier-1",
		Items: []entity.OrderItem{
			{ProductID: "a", ProductName: "Arroz", Quantity: 2, Subtotal: decimal.RequireFromString("5.00")},
			{ProductID: "b", ProductName: "Café", Quantity: 1, Subtotal: decimal.RequireFromString("7.50")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderCreate_CabeceraYLineas(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)
	o := newOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, pgxmock.AnyArg(), o.TotalAmount, o.PaymentMethod, o.Status, o.CashierID,
			o.RefundReason, o.RefundedAt, o.RefundedBy, o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, it := range o.Items {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(o.ID, it.ProductID, it.ProductName, it.Quantity, it.Subtotal).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, repo.Create(context.Background(), o))
}

func TestOrderCreate_RequestIDRepetidoEsSolicitudDuplicada(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(uniqueViolation("orders_request_id_key"))

	err := repo.Create(context.Background(), newOrder())
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestOrderCreate_OtroUniqueEsDuplicado(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(uniqueViolation("orders_pkey"))

	err := repo.Create(context.Background(), newOrder())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NotErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestOrderCreate_FalloEnLineaSeDevuelve(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)

	mock.ExpectExec("INSERT INTO orders").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "order_items_subtotal_check"})

	err := repo.Create(context.Background(), newOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert order item")
}

// ──────────────────────────────────────────────────────────────────────────────
// Devolución
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByIDForUpdate_BloqueaLaCabecera(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = $1 FOR UPDATE`)).
		WithArgs("o-1").
		WillReturnRows(mock.NewRows(orderCols).AddRow(
			"o-1", nil, decimal.RequireFromString("5.00"), entity.PaymentCard, entity.OrderStatusCompleted,
			"cashier-1", "", nil, "", now, now,
		))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").
		WithArgs([]string{"o-1"}).
		WillReturnRows(mock.NewRows([]string{"order_id", "product_id", "product_name", "quantity", "subtotal"}).
			AddRow("o-1", "a", "Arroz", 2, decimal.RequireFromString("5.00")))

	o, err := repo.GetByIDForUpdate(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, o.Status)
	assert.Empty(t, o.RequestID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestGetByIDForUpdate_Inexistente(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("nope").
		WillReturnRows(mock.NewRows(orderCols))

	_, err := repo.GetByIDForUpdate(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkRefunded_Persiste(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)

	refundedAt := time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)
	o := newOrder()
	o.Status = entity.OrderStatusRefunded
	o.RefundReason = "producto dañado"
	o.RefundedAt = &refundedAt
	o.RefundedBy = "manager-1"

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET status = $2`)).
		WithArgs(o.ID, entity.OrderStatusRefunded, o.RefundReason, o.RefundedAt, o.RefundedBy, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkRefunded(context.Background(), o))
}

func TestMarkRefunded_SinFilasEsNoEncontrado(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewOrderRepository(mock)

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkRefunded(context.Background(), newOrder())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
