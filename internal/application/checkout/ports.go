package checkout

import (
	"context"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
type TxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		activityRepo repository.ActivityRepository,
	) error) error
}

// IdempotencyStore reserva claves de solicitud antes de abrir la transacción.
// La restricción UNIQUE de orders.request_id sigue siendo la garantía final.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. Si ya existía devuelve reserved=false y,
	// si la orden original ya terminó, su ID.
	Reserve(ctx context.Context, key string, ttl time.Duration) (existingOrderID string, reserved bool, err error)
	// Complete asocia la clave con la orden creada.
	Complete(ctx context.Context, key, orderID string, ttl time.Duration) error
	// Release libera la clave tras un fallo para que el cliente pueda reintentar.
	Release(ctx context.Context, key string) error
}

// ActivityPublisher difunde actividades ya confirmadas (feed en vivo).
type ActivityPublisher interface {
	Publish(activities []*entity.Activity)
}

// ReceiptGenerator genera el comprobante PDF de una orden.
type ReceiptGenerator interface {
	GenerateReceipt(order *entity.Order) ([]byte, error)
}
