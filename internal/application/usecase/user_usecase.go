package usecase

import (
	"context"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// GetByID obtiene un usuario por ID. Un usuario puede verse a sí mismo; ver a otros requiere admin.
func (uc *UserUseCase) GetByID(ctx context.Context, sess domain.Session, id string) (*dto.UserResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if sess.UserID != id {
		if err := sess.RequireRole(entity.RoleAdmin); err != nil {
			return nil, err
		}
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("users.get", err)
	}
	return entityToUserResponse(user), nil
}

// List lista usuarios (solo admin).
func (uc *UserUseCase) List(ctx context.Context, sess domain.Session, page dto.PageRequest) ([]dto.UserResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin); err != nil {
		return nil, err
	}
	page.DefaultPage()
	users, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.WrapPersistence("users.list", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *entityToUserResponse(u))
	}
	return out, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
