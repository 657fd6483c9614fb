// Package session sigue la identidad autenticada actual a partir de las notificaciones del
// proveedor de autenticación.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

// Manager registra un único listener en el proveedor y expone la identidad actual.
// Loading es true hasta la primera notificación. No hay reintentos.
type Manager struct {
	provider repository.AuthProvider
	log      zerolog.Logger

	mu          sync.RWMutex
	current     *entity.Identity
	loading     bool
	started     bool
	unsubscribe func()
}

// NewManager construye el manager; no se suscribe hasta Start.
func NewManager(provider repository.AuthProvider, log zerolog.Logger) *Manager {
	return &Manager{provider: provider, log: log, loading: true}
}

// Start registra el listener. onChange recibe cada identidad (nil = sin sesión) después de
// actualizar Current y Loading. Una segunda llamada devuelve domain.ErrAlreadyStarted.
// Si el proveedor rechaza el registro devuelve *domain.AuthError.
func (m *Manager) Start(onChange func(*entity.Identity)) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	unsub, err := m.provider.OnSessionChange(func(id *entity.Identity) {
		m.set(id)
		if onChange != nil {
			onChange(id)
		}
	})
	if err != nil {
		m.mu.Lock()
		m.started = false
		m.mu.Unlock()
		return &domain.AuthError{Err: err}
	}

	m.mu.Lock()
	m.unsubscribe = unsub
	m.mu.Unlock()
	return nil
}

// Stop da de baja el listener. Idempotente.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Current identidad actual o nil.
func (m *Manager) Current() *entity.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Loading true mientras no llegó la primera notificación del proveedor.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// SignOut cierra la sesión en el proveedor; la identidad se limpia cuando llega la notificación.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("cerrar sesión: %w", err)
	}
	return nil
}

func (m *Manager) set(id *entity.Identity) {
	m.mu.Lock()
	prev := m.current
	m.current = id
	m.loading = false
	m.mu.Unlock()

	switch {
	case id == nil && prev != nil:
		m.log.Info().Str("user_id", prev.ID).Msg("sesión cerrada")
	case id != nil && !id.Same(prev):
		m.log.Info().Str("user_id", id.ID).Str("email", id.Email).Msg("sesión iniciada")
	}
}
