package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Flujo feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_DescuentaStockYRegistraVenta(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Leche entera", 5, 1)

	resp, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCash, line(productA, 2, "10.00")))
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCompleted, resp.Status)
	assert.Equal(t, cashier.UserID, resp.CashierID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Leche entera", resp.Items[0].ProductName)
	assert.Equal(t, 3, f.stock(t, productA))

	acts := f.allActivities(t)
	require.Len(t, acts, 1)
	assert.Equal(t, entity.ActivitySale, acts[0].Type)
	assert.Equal(t, 2, acts[0].Quantity)
	assert.Equal(t, -2, acts[0].StockChange)
	assert.True(t, acts[0].Amount.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, resp.ID, acts[0].OrderID)
	assert.Equal(t, 1, f.published.count(), "las actividades se publican tras el commit")
}

func TestCreateOrder_UnaVentaPorProducto(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Pan", 10, 0)
	f.seed(t, productB, "Queso", 10, 0)

	_, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCard,
		line(productB, 1, "8.50"),
		line(productA, 3, "6.00"),
		line(productB, 2, "17.00"),
	))
	require.NoError(t, err)

	assert.Equal(t, 7, f.stock(t, productA))
	assert.Equal(t, 7, f.stock(t, productB))

	sales := map[string]*entity.Activity{}
	for _, a := range f.allActivities(t) {
		require.Equal(t, entity.ActivitySale, a.Type)
		sales[a.ProductID] = a
	}
	require.Len(t, sales, 2, "las líneas repetidas se agrupan")
	assert.Equal(t, 3, sales[productB].Quantity)
	assert.True(t, sales[productB].Amount.Equal(decimal.RequireFromString("25.50")))
}

func TestCreateOrder_RegistraStockBajoAlCruzarUmbral(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Yogur", 6, 5)

	_, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCash, line(productA, 2, "4.00")))
	require.NoError(t, err)

	var types []string
	for _, a := range f.allActivities(t) {
		types = append(types, a.Type)
	}
	assert.ElementsMatch(t, []string{entity.ActivitySale, entity.ActivityLowStock}, types)

	// Ya por debajo del umbral: no se repite la alerta.
	_, err = f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCash, line(productA, 1, "2.00")))
	require.NoError(t, err)
	assert.Len(t, f.allActivities(t), 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de negocio: nada se escribe
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_StockInsuficiente_NoEscribeNada(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Arroz", 5, 0)
	f.seed(t, productB, "Aceite", 3, 0)

	_, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCash,
		line(productA, 1, "3.00"),
		line(productB, 10, "90.00"),
	))
	require.Error(t, err)

	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, productB, insuf.ProductID)
	assert.Equal(t, 10, insuf.Requested)
	assert.Equal(t, 3, insuf.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, f.stock(t, productA))
	assert.Equal(t, 3, f.stock(t, productB))
	assert.Zero(t, f.orderCount(t))
	assert.Empty(t, f.allActivities(t))
	assert.Zero(t, f.published.count())
}

func TestCreateOrder_ProductoNoDisponible(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Huevos", 0, 0)
	f.seed(t, productB, "Harina", 4, 0)

	_, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentOnline,
		line(productA, 1, "1.00"),
		line(productB, 1, "1.00"),
		line(productC, 1, "1.00"),
	))

	var unavailable *domain.ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{productA, productC}, unavailable.ProductIDs)
	assert.Equal(t, 4, f.stock(t, productB))
	assert.Zero(t, f.orderCount(t))
}

func TestCreateOrder_SinSesion(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Sal", 5, 0)

	_, err := f.create.CreateOrder(context.Background(), domain.Session{}, cart(entity.PaymentCash, line(productA, 1, "1.00")))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 5, f.stock(t, productA))
}

func TestCreateOrder_Validacion(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Azúcar", 5, 0)

	cases := []struct {
		name  string
		mut   func(r *createReq)
		field string
	}{
		{"carrito vacío", func(r *createReq) { r.Products = nil }, "products"},
		{"cantidad cero", func(r *createReq) { r.Products[0].Quantity = 0 }, "products[0].quantity"},
		{"subtotal cero", func(r *createReq) { r.Products[0].Subtotal = decimal.Zero }, "products[0].subtotal"},
		{"total no positivo", func(r *createReq) { r.TotalAmount = decimal.Zero }, "total_amount"},
		{"total distinto a la suma", func(r *createReq) { r.TotalAmount = decimal.NewFromInt(99) }, "total_amount"},
		{"medio de pago", func(r *createReq) { r.PaymentMethod = "cheque" }, "payment_method"},
		{"subtotal con tres decimales", func(r *createReq) {
			r.Products[0].Subtotal = decimal.RequireFromString("2.005")
			r.TotalAmount = decimal.RequireFromString("2.005")
		}, "products[0].subtotal"},
		{"subtotal menor a un centavo", func(r *createReq) {
			r.Products[0].Subtotal = decimal.RequireFromString("0.001")
			r.TotalAmount = decimal.RequireFromString("0.001")
		}, "products[0].subtotal"},
		{"total fuera de rango", func(r *createReq) { r.TotalAmount = decimal.New(1, 12) }, "total_amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := cart(entity.PaymentCash, line(productA, 1, "2.00"))
			tc.mut(&req)

			_, err := f.create.CreateOrder(context.Background(), cashier, req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 5, f.stock(t, productA))
}

func TestCreateOrder_SubtotalesRedondeadosNoDescuadranElTotal(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Arroz", 5, 0)
	f.seed(t, productB, "Lentejas", 5, 0)

	req := cart(entity.PaymentCash, line(productA, 1, "1.005"), line(productB, 1, "1.005"))
	req.TotalAmount = decimal.RequireFromString("2.01")

	_, err := f.create.CreateOrder(context.Background(), cashier, req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "products[0].subtotal", verr.Field)
	assert.Equal(t, 5, f.stock(t, productA))
	assert.Empty(t, f.allActivities(t))
}

func TestCreateOrder_CerosFinalesSeAceptan(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Harina", 5, 0)

	_, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCash, line(productA, 1, "3.5000")))
	require.NoError(t, err)
	assert.Equal(t, 4, f.stock(t, productA))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_FalloDePersistenciaRevierteTodo(t *testing.T) {
	for _, op := range []string{"order.create", "activity.create", "tx.commit"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, productA, "Café", 5, 0)
			f.store.FailOn(op, errors.New("disco lleno"))

			_, err := f.create.CreateOrder(context.Background(), cashier, cart(entity.PaymentCash, line(productA, 2, "20.00")))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrPersistence)

			f.store.ClearFailures()
			assert.Equal(t, 5, f.stock(t, productA))
			assert.Zero(t, f.orderCount(t))
			assert.Empty(t, f.allActivities(t))
			assert.Zero(t, f.published.count())
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_RequestIDRepetido(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Agua", 10, 0)

	req := cart(entity.PaymentCash, line(productA, 1, "1.50"))
	req.RequestID = "caja-3-0001"

	first, err := f.create.CreateOrder(context.Background(), cashier, req)
	require.NoError(t, err)

	_, err = f.create.CreateOrder(context.Background(), cashier, req)
	var dup *domain.DuplicateRequestError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.OrderID)
	assert.Equal(t, 9, f.stock(t, productA))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestCreateOrder_RequestIDLiberadoTrasFallo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Jugo", 1, 0)

	req := cart(entity.PaymentCash, line(productA, 2, "6.00"))
	req.RequestID = "caja-1-0042"
	_, err := f.create.CreateOrder(context.Background(), cashier, req)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	req = cart(entity.PaymentCash, line(productA, 1, "3.00"))
	req.RequestID = "caja-1-0042"
	_, err = f.create.CreateOrder(context.Background(), cashier, req)
	require.NoError(t, err, "una solicitud fallida no consume la clave")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_ConcurrenciaNuncaSobrevende(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, "Aguacate", 10, 0)
	f.seed(t, productB, "Tomate", 10, 0)

	const buyers = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		stockKO int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Mitad de los carritos en orden A,B y mitad B,A.
			lines := []lineReq{line(productA, 1, "1.00"), line(productB, 1, "1.00")}
			if i%2 == 0 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			req := cart(entity.PaymentCash, lines...)
			req.RequestID = fmt.Sprintf("req-%d", i)
			_, err := f.create.CreateOrder(context.Background(), cashier, req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrProductUnavailable), errors.Is(err, domain.ErrInsufficientStock):
				stockKO++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, buyers-10, stockKO)
	assert.Zero(t, f.stock(t, productA))
	assert.Zero(t, f.stock(t, productB))
	assert.Equal(t, 10, f.orderCount(t))
}
