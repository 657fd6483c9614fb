package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository credenciales en memoria, indexadas por email en minúsculas.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

// NewUserRepository repositorio vacío.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

// Create guarda el usuario; domain.ErrEmailAlreadyExists si el email ya existe.
func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	key := strings.ToLower(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[key]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.users[key] = *u
	return nil
}

// FindByEmail (nil, nil) si no existe.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
