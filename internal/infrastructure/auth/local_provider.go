// Package auth implementa el proveedor de autenticación local: usuarios con contraseña bcrypt
// y token JWT de sesión.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
	"github.com/jhoicas/Inventario-sync/pkg/jwt"
)

var (
	_ repository.AuthProvider  = (*LocalProvider)(nil)
	_ repository.Authenticator = (*LocalProvider)(nil)
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// LocalProvider proveedor de sesión de un solo usuario activo a la vez (como un navegador):
// SignIn y Register reemplazan la sesión actual, SignOut la cierra. Cada cambio se notifica a
// los listeners en orden y de forma asíncrona.
type LocalProvider struct {
	users  repository.UserRepository
	jwtCfg JWTConfig
	log    zerolog.Logger
	cost   int

	mu        sync.Mutex
	current   *entity.Identity
	listeners map[*listener]struct{}
}

// Option configura el proveedor.
type Option func(*LocalProvider)

// WithBcryptCost cambia el costo de bcrypt (tests).
func WithBcryptCost(cost int) Option {
	return func(p *LocalProvider) { p.cost = cost }
}

// NewLocalProvider construye el proveedor sin sesión activa.
func NewLocalProvider(users repository.UserRepository, jwtCfg JWTConfig, log zerolog.Logger, opts ...Option) *LocalProvider {
	p := &LocalProvider{
		users:     users,
		jwtCfg:    jwtCfg,
		log:       log,
		cost:      bcrypt.DefaultCost,
		listeners: make(map[*listener]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnSessionChange registra el listener; recibe la sesión actual y luego cada cambio.
func (p *LocalProvider) OnSessionChange(fn repository.SessionListener) (func(), error) {
	if fn == nil {
		return nil, errors.New("listener nil")
	}
	l := newListener(fn)

	p.mu.Lock()
	p.listeners[l] = struct{}{}
	l.push(p.current)
	p.mu.Unlock()

	go l.run()

	return func() {
		p.mu.Lock()
		delete(p.listeners, l)
		p.mu.Unlock()
		l.stop()
	}, nil
}

// Register crea el usuario (bcrypt) e inicia sesión con él.
// domain.ErrEmailAlreadyExists si el email ya está registrado.
func (p *LocalProvider) Register(ctx context.Context, email, password string) (*entity.Identity, error) {
	email = strings.TrimSpace(email)
	existing, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	p.log.Info().Str("user_id", user.ID).Msg("usuario registrado")
	return p.startSession(user)
}

// SignIn verifica email/password e inicia sesión. domain.ErrUnauthorized si no coinciden.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	user, err := p.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return p.startSession(user)
}

// SignOut cierra la sesión actual. Sin sesión no notifica nada.
func (p *LocalProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	p.log.Info().Str("user_id", p.current.ID).Msg("sesión cerrada")
	p.current = nil
	p.broadcast()
	return nil
}

// Current sesión activa o nil.
func (p *LocalProvider) Current() *entity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *LocalProvider) startSession(user *entity.User) (*entity.Identity, error) {
	token, err := jwt.Generate(p.jwtCfg.Secret, user.ID, user.Email, p.jwtCfg.Issuer, p.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	id := &entity.Identity{ID: user.ID, Email: user.Email, Token: token}

	p.mu.Lock()
	p.current = id
	p.broadcast()
	p.mu.Unlock()

	p.log.Info().Str("user_id", user.ID).Msg("sesión iniciada")
	return id, nil
}

// broadcast se llama con p.mu tomado.
func (p *LocalProvider) broadcast() {
	for l := range p.listeners {
		l.push(p.current)
	}
}
