package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// UserRepository define el puerto de persistencia de credenciales (DIP).
// FindByEmail devuelve (nil, nil) si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
