package activity

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// UseCase consultas del registro de actividad.
type UseCase struct {
	repo repository.ActivityRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ActivityRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

// List devuelve la página pedida, más recientes primero.
// Limit fuera de 1..100 se ajusta (0 = 20); Type debe ser uno de los tipos conocidos.
func (uc *UseCase) List(ctx context.Context, sess domain.Session, q dto.ActivityQuery) (*dto.ActivityListResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	q.DefaultPage()
	if q.Type != "" && !entity.ValidActivityType(q.Type) {
		return nil, domain.NewValidationError("type", "debe ser uno de: "+strings.Join(entity.ActivityTypes, ", "))
	}
	items, total, err := uc.repo.List(ctx, repository.ActivityFilter{
		ProductID: q.ProductID,
		Type:      q.Type,
		Search:    strings.TrimSpace(q.Search),
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return nil, domain.WrapPersistence("activity.list", err)
	}
	out := make([]dto.ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ToActivityResponse(a))
	}
	return &dto.ActivityListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Stats total, registros de hoy (desde la medianoche local) y conteo por tipo,
// con los seis tipos siempre presentes.
func (uc *UseCase) Stats(ctx context.Context, sess domain.Session) (*dto.ActivityStatsResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	now := uc.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats, err := uc.repo.Stats(ctx, midnight)
	if err != nil {
		return nil, domain.WrapPersistence("activity.stats", err)
	}
	byType := make(map[string]int, len(entity.ActivityTypes))
	for _, t := range entity.ActivityTypes {
		byType[t] = stats.ByType[t]
	}
	return &dto.ActivityStatsResponse{Total: stats.Total, Today: stats.Today, ByType: byType}, nil
}

// ToActivityResponse convierte la entidad a DTO.
func ToActivityResponse(a *entity.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:          a.ID,
		ProductID:   a.ProductID,
		ProductName: a.ProductName,
		UserID:      a.UserID,
		OrderID:     a.OrderID,
		Type:        a.Type,
		Quantity:    a.Quantity,
		StockChange: a.StockChange,
		Amount:      a.Amount,
		Note:        a.Note,
		CreatedAt:   a.CreatedAt,
	}
}
