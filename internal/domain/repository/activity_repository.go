package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

// ActivityFilter criterios de listado del registro de actividad.
type ActivityFilter struct {
	ProductID string
	Type      string
	Search    string // texto libre sobre nota y nombre de producto
	Limit     int
	Offset    int
}

// ActivityStats conteos agregados del registro.
type ActivityStats struct {
	Total  int
	Today  int
	ByType map[string]int
}

// ActivityRepository registro append-only: no hay Update ni Delete.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]*entity.Activity, int, error)
	// Stats cuenta el total, los registros desde todayStart y los conteos por tipo.
	Stats(ctx context.Context, todayStart time.Time) (*ActivityStats, error)
}
