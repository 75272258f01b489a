package usecase

import (
	"context"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// TxRunner transacción con productos y actividad (alta con stock inicial, cambios de precio).
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
