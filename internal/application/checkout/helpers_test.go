package checkout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/memory"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	productA = "00000000-0000-0000-0000-00000000000a"
	productB = "00000000-0000-0000-0000-00000000000b"
	productC = "00000000-0000-0000-0000-00000000000c"
)

var cashier = domain.Session{UserID: "cashier-1", Role: entity.RoleCashier}

type fixture struct {
	store     *memory.Store
	products  *memory.ProductRepository
	orders    *memory.OrderRepository
	activity  *memory.ActivityRepository
	idem      *memory.IdempotencyStore
	published *recordingPublisher
	create    *checkout.CreateOrderUseCase
	refund    *checkout.RefundUseCase
	queries   *checkout.OrderQueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{
		store:     s,
		products:  memory.NewProductRepository(s),
		orders:    memory.NewOrderRepository(s),
		activity:  memory.NewActivityRepository(s),
		idem:      memory.NewIdempotencyStore(),
		published: &recordingPublisher{},
	}
	tx := memory.NewTxRunner(s)
	f.create = checkout.NewCreateOrderUseCase(tx, f.orders, f.idem, f.published, time.Hour, logger.Nop())
	f.refund = checkout.NewRefundUseCase(tx, f.published, true, logger.Nop())
	f.queries = checkout.NewOrderQueryUseCase(f.orders, nil)
	return f
}

// seed crea un producto activo con el stock y umbral indicados.
func (f *fixture) seed(t *testing.T, id, name string, stock, threshold int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.products.Create(context.Background(), &entity.Product{
		ID:                id,
		Name:              name,
		SKU:               "SKU-" + id[len(id)-4:],
		Unit:              "und",
		CostPrice:         decimal.NewFromInt(2),
		SellingPrice:      decimal.NewFromInt(5),
		CurrentStock:      stock,
		LowStockThreshold: threshold,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}

func (f *fixture) allActivities(t *testing.T) []*entity.Activity {
	t.Helper()
	items, _, err := f.activity.List(context.Background(), repository.ActivityFilter{Limit: 1000})
	require.NoError(t, err)
	return items
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.orders.List(context.Background(), repository.OrderFilter{Limit: 1000})
	require.NoError(t, err)
	return total
}

func line(productID string, qty int, subtotal string) dto.OrderLineRequest {
	return dto.OrderLineRequest{ProductID: productID, Quantity: qty, Subtotal: decimal.RequireFromString(subtotal)}
}

func cart(method string, lines ...dto.OrderLineRequest) dto.CreateOrderRequest {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return dto.CreateOrderRequest{Products: lines, TotalAmount: total, PaymentMethod: method}
}

type recordingPublisher struct {
	mu         sync.Mutex
	activities []*entity.Activity
}

func (p *recordingPublisher) Publish(activities []*entity.Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activities = append(p.activities, activities...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.activities)
}

type (
	createReq = dto.CreateOrderRequest
	lineReq   = dto.OrderLineRequest
)
