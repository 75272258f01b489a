package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/inventory"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
	"github.com/jhoicas/Supermercado-api/pkg/validator"
)

var tracer = otel.Tracer("supermercado-api/checkout")

// DefaultIdempotencyTTL tiempo que se recuerda una clave de solicitud si no se configura otro.
const DefaultIdempotencyTTL = 24 * time.Hour

// CreateOrderUseCase registra una venta de caja: valida el carrito, bloquea los productos,
// descuenta stock, persiste la orden y sus actividades en una sola transacción.
type CreateOrderUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	idempotency IdempotencyStore
	publisher   ActivityPublisher
	idemTTL     time.Duration
	log         *logger.Logger
}

// NewCreateOrderUseCase construye el caso de uso. idempotency y publisher pueden ser nil.
func NewCreateOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	idempotency IdempotencyStore,
	publisher ActivityPublisher,
	idemTTL time.Duration,
	log *logger.Logger,
) *CreateOrderUseCase {
	if idemTTL <= 0 {
		idemTTL = DefaultIdempotencyTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateOrderUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		idempotency: idempotency,
		publisher:   publisher,
		idemTTL:     idemTTL,
		log:         log,
	}
}

// CreateOrder ejecuta el flujo completo de caja. Cualquier error dentro de la transacción
// deshace todas las escrituras; los fallos de almacenamiento salen como PersistenceError.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, sess domain.Session, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "checkout.CreateOrder")
	defer span.End()

	order, activities, err := uc.createOrder(ctx, sess, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(order.Items)),
		attribute.String("order.total", order.TotalAmount.String()),
	)

	if uc.publisher != nil {
		uc.publisher.Publish(activities)
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("cashier_id", order.CashierID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("orden registrada")

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (uc *CreateOrderUseCase) createOrder(ctx context.Context, sess domain.Session, in dto.CreateOrderRequest) (*entity.Order, []*entity.Activity, error) {
	if err := sess.Require(); err != nil {
		return nil, nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, nil, verr
	}

	lines := make([]inventory.Line, len(in.Products))
	sum := decimal.Zero
	for i, p := range in.Products {
		lines[i] = inventory.Line{ProductID: p.ProductID, Quantity: p.Quantity, Subtotal: p.Subtotal}
		sum = sum.Add(p.Subtotal)
	}
	if !sum.Equal(in.TotalAmount) {
		return nil, nil, domain.NewValidationError("total_amount",
			fmt.Sprintf("no coincide con la suma de subtotales (%s)", sum.StringFixed(2)))
	}
	lines = inventory.MergeLines(lines)

	requestID := in.RequestID
	if requestID != "" {
		if err := uc.reserve(ctx, requestID); err != nil {
			return nil, nil, err
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:            uuid.New().String(),
		RequestID:     requestID,
		TotalAmount:   in.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		Status:        entity.OrderStatusCompleted,
		CashierID:     sess.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	var activities []*entity.Activity

	err := uc.txRunner.RunCheckout(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		activityRepo repository.ActivityRepository,
	) error {
		// Bloqueo en orden ascendente de ID para que dos cajas no se crucen.
		products, err := productRepo.GetManyForUpdate(ctx, inventory.ProductIDs(lines))
		if err != nil {
			return err
		}
		if err := inventory.CheckAvailability(products, lines); err != nil {
			return err
		}
		byID := make(map[string]*entity.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		activities = activities[:0]
		order.Items = order.Items[:0]
		for _, l := range lines {
			p := byID[l.ProductID]
			newStock, ok, err := productRepo.DecrementStock(ctx, p.ID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientStockError{ProductID: p.ID, Requested: l.Quantity, Available: p.CurrentStock}
			}
			order.Items = append(order.Items, entity.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    l.Quantity,
				Subtotal:    l.Subtotal,
			})
			activities = append(activities, &entity.Activity{
				ID:          uuid.New().String(),
				ProductID:   p.ID,
				ProductName: p.Name,
				UserID:      sess.UserID,
				OrderID:     order.ID,
				Type:        entity.ActivitySale,
				Quantity:    l.Quantity,
				StockChange: -l.Quantity,
				Amount:      l.Subtotal,
				Note:        fmt.Sprintf("Venta %s (%s)", shortID(order.ID), order.PaymentMethod),
				CreatedAt:   now,
			})
			if inventory.CrossesLowStock(p.CurrentStock, newStock, p.LowStockThreshold) {
				activities = append(activities, lowStockActivity(p, newStock, sess.UserID, order.ID, now))
			}
		}

		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for _, a := range activities {
			if err := activityRepo.Create(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("order_id", order.ID).Msg("checkout revertido")
		if requestID != "" {
			uc.release(ctx, requestID)
			if errors.Is(err, domain.ErrDuplicateRequest) {
				return nil, nil, uc.duplicate(ctx, requestID)
			}
		}
		return nil, nil, domain.WrapPersistence("checkout.create_order", err)
	}

	if requestID != "" && uc.idempotency != nil {
		if err := uc.idempotency.Complete(ctx, requestID, order.ID, uc.idemTTL); err != nil {
			uc.log.Warn().Err(err).Str("request_id", requestID).Msg("no se pudo completar la clave de idempotencia")
		}
	}
	return order, activities, nil
}

// reserve rechaza claves ya usadas: primero contra la tabla de órdenes, luego contra el store rápido.
// Si el store falla se continúa; la restricción UNIQUE decide al insertar.
func (uc *CreateOrderUseCase) reserve(ctx context.Context, requestID string) error {
	existing, err := uc.orderRepo.GetByRequestID(ctx, requestID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.WrapPersistence("checkout.lookup_request", err)
	}
	if existing != nil {
		return &domain.DuplicateRequestError{RequestID: requestID, OrderID: existing.ID}
	}
	if uc.idempotency == nil {
		return nil
	}
	existingID, reserved, err := uc.idempotency.Reserve(ctx, requestID, uc.idemTTL)
	if err != nil {
		uc.log.Warn().Err(err).Str("request_id", requestID).Msg("store de idempotencia no disponible")
		return nil
	}
	if !reserved {
		return &domain.DuplicateRequestError{RequestID: requestID, OrderID: existingID}
	}
	return nil
}

func (uc *CreateOrderUseCase) release(ctx context.Context, requestID string) {
	if uc.idempotency == nil {
		return
	}
	if err := uc.idempotency.Release(ctx, requestID); err != nil {
		uc.log.Warn().Err(err).Str("request_id", requestID).Msg("no se pudo liberar la clave de idempotencia")
	}
}

func (uc *CreateOrderUseCase) duplicate(ctx context.Context, requestID string) error {
	dup := &domain.DuplicateRequestError{RequestID: requestID}
	if existing, err := uc.orderRepo.GetByRequestID(ctx, requestID); err == nil && existing != nil {
		dup.OrderID = existing.ID
	}
	return dup
}

func lowStockActivity(p *entity.Product, newStock int, userID, orderID string, now time.Time) *entity.Activity {
	return &entity.Activity{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		UserID:      userID,
		OrderID:     orderID,
		Type:        entity.ActivityLowStock,
		Quantity:    newStock,
		Amount:      decimal.Zero,
		Note:        fmt.Sprintf("Stock bajo: %d unidades (umbral %d)", newStock, p.LowStockThreshold),
		CreatedAt:   now,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
