package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// SessionListener recibe la identidad actual (nil = sin sesión).
type SessionListener func(identity *entity.Identity)

// AuthProvider puerto del proveedor externo de autenticación.
//
// OnSessionChange notifica el estado inicial y cada inicio/cierre de sesión posterior.
// La notificación inicial llega de forma asíncrona.
type AuthProvider interface {
	OnSessionChange(listener SessionListener) (func(), error)
	SignOut(ctx context.Context) error
}

// Authenticator inicio de sesión y registro con email y contraseña.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	Register(ctx context.Context, email, password string) (*entity.Identity, error)
}
