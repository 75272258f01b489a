package inventory

import (
	"context"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		activityRepo repository.ActivityRepository,
	) error) error
}

// ActivityPublisher difunde actividades ya confirmadas.
type ActivityPublisher interface {
	Publish(activities []*entity.Activity)
}
