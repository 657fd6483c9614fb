package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sync/internal/application/session"
	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

// fakeProvider guarda el listener y permite emitir notificaciones a mano.
type fakeProvider struct {
	mu           sync.Mutex
	listener     repository.SessionListener
	registerErr  error
	signOutErr   error
	registered   int
	unsubscribed int
	signOuts     int
}

func (p *fakeProvider) OnSessionChange(l repository.SessionListener) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registerErr != nil {
		return nil, p.registerErr
	}
	p.registered++
	p.listener = l
	return func() {
		p.mu.Lock()
		p.unsubscribed++
		p.mu.Unlock()
	}, nil
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts++
	return p.signOutErr
}

func (p *fakeProvider) emit(id *entity.Identity) {
	p.mu.Lock()
	l := p.listener
	p.mu.Unlock()
	l(id)
}

func TestManager_LoadingHastaPrimeraNotificacion(t *testing.T) {
	p := &fakeProvider{}
	m := session.NewManager(p, zerolog.Nop())
	var got []*entity.Identity
	require.NoError(t, m.Start(func(id *entity.Identity) { got = append(got, id) }))

	assert.True(t, m.Loading())
	assert.Nil(t, m.Current())

	p.emit(nil)
	assert.False(t, m.Loading())
	assert.Nil(t, m.Current())

	u1 := &entity.Identity{ID: "u1", Email: "ana@example.com"}
	p.emit(u1)
	assert.Equal(t, u1, m.Current())
	assert.Equal(t, []*entity.Identity{nil, u1}, got)
}

func TestManager_StartDosVeces_Falla(t *testing.T) {
	p := &fakeProvider{}
	m := session.NewManager(p, zerolog.Nop())
	require.NoError(t, m.Start(nil))

	err := m.Start(nil)

	assert.ErrorIs(t, err, domain.ErrAlreadyStarted)
	assert.Equal(t, 1, p.registered)
}

func TestManager_RegistroRechazado_AuthError(t *testing.T) {
	cause := errors.New("proveedor caído")
	m := session.NewManager(&fakeProvider{registerErr: cause}, zerolog.Nop())

	err := m.Start(nil)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, cause)
	assert.True(t, m.Loading())
}

func TestManager_StopIdempotente(t *testing.T) {
	p := &fakeProvider{}
	m := session.NewManager(p, zerolog.Nop())
	require.NoError(t, m.Start(nil))

	m.Stop()
	m.Stop()

	assert.Equal(t, 1, p.unsubscribed)
}

func TestManager_SignOut(t *testing.T) {
	p := &fakeProvider{}
	m := session.NewManager(p, zerolog.Nop())
	require.NoError(t, m.SignOut(context.Background()))
	assert.Equal(t, 1, p.signOuts)

	p.signOutErr = errors.New("red")
	assert.Error(t, m.SignOut(context.Background()))
}
