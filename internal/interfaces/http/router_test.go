package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/application/activity"
	appanalytics "github.com/jhoicas/Supermercado-api/internal/application/analytics"
	"github.com/jhoicas/Supermercado-api/internal/application/auth"
	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/application/inventory"
	"github.com/jhoicas/Supermercado-api/internal/application/usecase"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Supermercado-api/internal/interfaces/http"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	leche = "00000000-0000-0000-0000-0000000000a1"
	pan   = "00000000-0000-0000-0000-0000000000b2"
)

type testServer struct {
	app      *fiber.App
	store    *memory.Store
	products *memory.ProductRepository
	authUC   *auth.AuthUseCase
}

func newTestServer(t *testing.T, limiter *apphttp.RateLimiter, health func(context.Context) error) *testServer {
	t.Helper()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	orders := memory.NewOrderRepository(s)
	activities := memory.NewActivityRepository(s)
	categories := memory.NewCategoryRepository(s)
	suppliers := memory.NewSupplierRepository(s)
	users := memory.NewUserRepository(s)
	tx := memory.NewTxRunner(s)

	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(users),
		ProductUC:   usecase.NewProductUseCase(tx, products, orders, categories, suppliers, nil),
		CatalogUC:   usecase.NewCatalogUseCase(categories, suppliers),
		CreateOrder: checkout.NewCreateOrderUseCase(tx, orders, memory.NewIdempotencyStore(), nil, time.Hour, logger.Nop()),
		Refund:      checkout.NewRefundUseCase(tx, nil, true, logger.Nop()),
		Orders:      checkout.NewOrderQueryUseCase(orders, nil),
		AdjustStock: inventory.NewAdjustStockUseCase(tx, nil, logger.Nop()),
		LowStock:    inventory.NewLowStockUseCase(products),
		ActivityUC:  activity.NewUseCase(activities),
		DashboardUC: appanalytics.NewDashboardUseCase(memory.NewAnalyticsRepository(s), products),
		RateLimiter: limiter,
		HealthCheck: health,
		AppName:     "supermercado-api-test",
		JWTSecret:   testJWTSecret,
	})

	ts := &testServer{app: app, store: s, products: products, authUC: authUC}
	ts.seed(t, leche, "Leche entera", 10, 2)
	ts.seed(t, pan, "Pan tajado", 3, 1)
	return ts
}

func (ts *testServer) seed(t *testing.T, id, name string, stock, threshold int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, ts.products.Create(context.Background(), &entity.Product{
		ID: id, Name: name, SKU: "SKU-" + id[len(id)-2:], Unit: "und",
		CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(5),
		CurrentStock: stock, LowStockThreshold: threshold, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (ts *testServer) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := ts.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}

func (ts *testServer) do(t *testing.T, method, path, role string, body any, headers ...string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func cart(lines ...dto.OrderLineRequest) dto.CreateOrderRequest {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return dto.CreateOrderRequest{Products: lines, TotalAmount: total, PaymentMethod: "cash"}
}

func line(id string, qty int, subtotal int64) dto.OrderLineRequest {
	return dto.OrderLineRequest{ProductID: id, Quantity: qty, Subtotal: decimal.NewFromInt(subtotal)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Caja
// ──────────────────────────────────────────────────────────────────────────────

func TestCrearOrden_DescuentaStockYRegistraVenta(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 2, 10), line(pan, 1, 5)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[dto.OrderResponse](t, resp)

	assert.Equal(t, entity.OrderStatusCompleted, order.Status)
	assert.Equal(t, testUserID, order.CashierID)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 8, ts.stock(t, leche))
	assert.Equal(t, 2, ts.stock(t, pan))

	list := decode[dto.ActivityListResponse](t, ts.do(t, http.MethodGet, "/api/activities?type=sale", "cashier", nil))
	assert.Equal(t, 2, list.Page.Total)
	for _, a := range list.Items {
		assert.Equal(t, order.ID, a.OrderID)
	}
}

func TestCrearOrden_SinToken_Retorna401(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	resp := ts.do(t, http.MethodPost, "/api/orders", "", cart(line(leche, 1, 5)))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 10, ts.stock(t, leche))
}

func TestCrearOrden_ValidacionIndicaCampo(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	in := cart(line(leche, 0, 5))

	resp := ts.do(t, http.MethodPost, "/api/orders", "cashier", in)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "products[0].quantity", body.Field)
}

func TestCrearOrden_StockInsuficiente_Retorna409ConDetalle(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5), line(pan, 4, 20)))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, pan, body.Details["product_id"])
	assert.EqualValues(t, 4, body.Details["requested"])
	assert.EqualValues(t, 3, body.Details["available"])

	// Sin escrituras parciales.
	assert.Equal(t, 10, ts.stock(t, leche))
	assert.Equal(t, 3, ts.stock(t, pan))
}

func TestCrearOrden_ProductoInexistente_Retorna409(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	missing := "00000000-0000-0000-0000-0000000000ff"

	resp := ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(missing, 1, 5)))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", body.Code)
	assert.Equal(t, []any{missing}, body.Details["product_ids"])
}

func TestCrearOrden_IdempotencyKeyRepetida(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	in := cart(line(leche, 1, 5))

	first := ts.do(t, http.MethodPost, "/api/orders", "cashier", in, apphttp.HeaderIdempotencyKey, "caja1-0001")
	require.Equal(t, http.StatusCreated, first.StatusCode)
	order := decode[dto.OrderResponse](t, first)
	assert.Equal(t, "caja1-0001", order.RequestID)

	second := ts.do(t, http.MethodPost, "/api/orders", "cashier", in, apphttp.HeaderIdempotencyKey, "caja1-0001")
	require.Equal(t, http.StatusConflict, second.StatusCode)
	body := decode[dto.ErrorResponse](t, second)
	assert.Equal(t, "DUPLICATE_REQUEST", body.Code)
	assert.Equal(t, order.ID, body.Details["order_id"])

	assert.Equal(t, 9, ts.stock(t, leche), "la segunda solicitud no descuenta stock")
}

func TestCrearOrden_HeaderYBodyDistintos_Retorna400(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	in := cart(line(leche, 1, 5))
	in.RequestID = "body-key"

	resp := ts.do(t, http.MethodPost, "/api/orders", "cashier", in, apphttp.HeaderIdempotencyKey, "header-key")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "request_id", body.Field)
}

func TestCrearOrden_FalloDeAlmacenamiento_Retorna503(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.store.FailOn("order.create", errors.New("disco lleno"))

	resp := ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5)))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "PERSISTENCE", body.Code)
	assert.NotContains(t, body.Message, "disco lleno")
	assert.Equal(t, 10, ts.stock(t, leche))
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones y consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestDevolucion_ReponeStockYNoSeRepite(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	order := decode[dto.OrderResponse](t, ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 3, 15))))
	require.Equal(t, 7, ts.stock(t, leche))

	resp := ts.do(t, http.MethodPost, "/api/orders/"+order.ID+"/refund", "cashier", dto.RefundRequest{Reason: "cliente cambió de opinión"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refunded := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, entity.OrderStatusRefunded, refunded.Status)
	assert.NotNil(t, refunded.RefundedAt)
	assert.Equal(t, 10, ts.stock(t, leche))

	again := ts.do(t, http.MethodPost, "/api/orders/"+order.ID+"/refund", "cashier", dto.RefundRequest{Reason: "otra vez"})
	require.Equal(t, http.StatusConflict, again.StatusCode)
	body := decode[dto.ErrorResponse](t, again)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body.Code)
	assert.Equal(t, 10, ts.stock(t, leche))
}

func TestDevolucion_SinMotivo_Retorna400(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	order := decode[dto.OrderResponse](t, ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5))))

	resp := ts.do(t, http.MethodPost, "/api/orders/"+order.ID+"/refund", "cashier", dto.RefundRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "reason", body.Field)
}

func TestOrdenes_ConsultaYFiltro(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	order := decode[dto.OrderResponse](t, ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(pan, 1, 5))))

	got := decode[dto.OrderResponse](t, ts.do(t, http.MethodGet, "/api/orders/"+order.ID, "cashier", nil))
	assert.Equal(t, order.ID, got.ID)

	list := decode[dto.OrderListResponse](t, ts.do(t, http.MethodGet, "/api/orders?status=completed&payment_method=cash", "manager", nil))
	assert.Equal(t, 1, list.Page.Total)

	none := decode[dto.OrderListResponse](t, ts.do(t, http.MethodGet, "/api/orders?status=refunded", "manager", nil))
	assert.Equal(t, 0, none.Page.Total)

	resp := ts.do(t, http.MethodGet, "/api/orders/no-existe", "cashier", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles, catálogo e inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestProductos_CajeroNoPuedeCrear(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	in := dto.CreateProductRequest{Name: "Arroz", SKU: "ARR-1", SellingPrice: decimal.NewFromInt(4)}

	resp := ts.do(t, http.MethodPost, "/api/products", "cashier", in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/products", "manager", in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "ARR-1", created.SKU)

	dup := ts.do(t, http.MethodPost, "/api/products", "manager", in)
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
}

func TestProductos_BusquedaSinTildes(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.seed(t, "00000000-0000-0000-0000-0000000000c3", "Café molido", 5, 1)

	list := decode[dto.ProductListResponse](t, ts.do(t, http.MethodGet, "/api/products?search=CAFE", "cashier", nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Café molido", list.Items[0].Name)
}

func TestProductos_NoSeEliminaConVentas(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5))).StatusCode)

	resp := ts.do(t, http.MethodDelete, "/api/products/"+leche, "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/products/"+pan, "manager", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/products/"+pan, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestInventario_AjusteYBajoStock(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := ts.do(t, http.MethodPost, "/api/inventory/adjustments", "cashier",
		dto.StockAdjustmentRequest{ProductID: pan, Type: dto.AdjustmentStockOut, Quantity: 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/inventory/adjustments", "manager",
		dto.StockAdjustmentRequest{ProductID: pan, Type: dto.AdjustmentStockOut, Quantity: 2, Note: "merma"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	adj := decode[dto.StockAdjustmentResponse](t, resp)
	assert.Equal(t, 3, adj.PreviousStock)
	assert.Equal(t, 1, adj.CurrentStock)

	low := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/inventory/low-stock", "cashier", nil))
	assert.EqualValues(t, 1, low["total"])

	resp = ts.do(t, http.MethodPost, "/api/inventory/adjustments", "manager",
		dto.StockAdjustmentRequest{ProductID: pan, Type: dto.AdjustmentStockOut, Quantity: 5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestActividad_Stats(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	order := decode[dto.OrderResponse](t, ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5))))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/orders/"+order.ID+"/refund", "cashier", dto.RefundRequest{Reason: "error de caja"}).StatusCode)

	stats := decode[dto.ActivityStatsResponse](t, ts.do(t, http.MethodGet, "/api/activities/stats", "cashier", nil))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 1, stats.ByType[entity.ActivitySale])
	assert.Equal(t, 1, stats.ByType[entity.ActivityRefund])
	assert.Contains(t, stats.ByType, entity.ActivityPriceChange)
}

func TestDashboard_SoloAdminYManager(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/dashboard/summary", "cashier", nil).StatusCode)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/dashboard/summary", "manager", nil).StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_RegistroYLogin(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	reg := dto.RegisterRequest{Email: "Caja@Super.co", Password: "secreta123", Name: "Caja 1", Role: "cashier"}

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/api/auth/register", "manager", reg).StatusCode)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/auth/register", "admin", reg).StatusCode)
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/auth/register", "admin", reg).StatusCode)

	bad := ts.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caja@super.co", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)

	resp := ts.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caja@super.co", Password: "secreta123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, me.StatusCode)
	user := decode[dto.UserResponse](t, me)
	assert.Equal(t, "caja@super.co", user.Email)
	assert.Equal(t, "cashier", user.Role)
}

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestRateLimiter_Retorna429(t *testing.T) {
	limiter := apphttp.NewRateLimiter(1, 1)
	t.Cleanup(limiter.Close)
	ts := newTestServer(t, limiter, nil)

	first := ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5)))
	assert.Equal(t, http.StatusCreated, first.StatusCode)

	second := ts.do(t, http.MethodPost, "/api/orders", "cashier", cart(line(leche, 1, 5)))
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.NotEmpty(t, second.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, 9, ts.stock(t, leche))

	// Las consultas no pasan por el limitador.
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/orders", "cashier", nil).StatusCode)
}

func TestHealth(t *testing.T) {
	ok := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusOK, ok.do(t, http.MethodGet, "/health", "", nil).StatusCode)

	down := newTestServer(t, nil, func(context.Context) error { return errors.New("postgres caído") })
	resp := down.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "degraded", body["status"])
}
