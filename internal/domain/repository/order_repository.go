package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

// OrderFilter criterios del historial de órdenes.
type OrderFilter struct {
	Status        string
	PaymentMethod string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	// Create persiste cabecera y líneas. Devuelve domain.ErrDuplicateRequest si RequestID ya existe.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetByIDForUpdate bloquea la cabecera de la orden (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error)
	GetByRequestID(ctx context.Context, requestID string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
	// MarkRefunded persiste Status, RefundReason, RefundedAt, RefundedBy y UpdatedAt.
	MarkRefunded(ctx context.Context, order *entity.Order) error
	ExistsForProduct(ctx context.Context, productID string) (bool, error)
}
