package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sync/internal/application/catalog"
	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

var (
	u1 = &entity.Identity{ID: "u1", Email: "ana@example.com"}
	u2 = &entity.Identity{ID: "u2", Email: "beto@example.com"}
)

// harness sincronizador con una cola de notificaciones que el test aplica a mano.
type harness struct {
	store   *fakeStore
	sync    *catalog.Synchronizer
	pending []catalog.Notification
}

func newHarness() *harness {
	h := &harness{store: newFakeStore()}
	h.sync = catalog.NewSynchronizer(h.store, func(n catalog.Notification) {
		h.pending = append(h.pending, n)
	}, zerolog.Nop())
	return h
}

func (h *harness) drain() (applied int) {
	for _, n := range h.pending {
		if h.sync.Apply(n) {
			applied++
		}
	}
	h.pending = nil
	return applied
}

func aguaJabon(owner string) []repository.Document {
	return []repository.Document{
		doc("p1", "Agua", "A1", "Bebidas", 5000, 0, owner),
		doc("p2", "Jabón", "J1", "Higiene", 8000, 10, owner),
	}
}

// ─── Transiciones ───────────────────────────────────────────────────────────

func TestSynchronizer_IdentidadAbreSuscripcionPorOwnerYNombre(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))

	require.Equal(t, 1, h.store.subCount())
	assert.Equal(t, repository.ProductQuery{OwnerID: "u1", OrderBy: repository.OrderByName}, h.store.sub(0).query)
	assert.Equal(t, catalog.StatusSubscribed, h.sync.Status())
	assert.Empty(t, h.sync.Products())
}

func TestSynchronizer_SnapshotReemplazaConjuntoCompleto(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))

	h.store.sub(0).onSnapshot(aguaJabon("u1"))
	assert.Equal(t, 1, h.drain())
	require.Len(t, h.sync.Products(), 2)
	assert.Equal(t, "p1", h.sync.Products()[0].ID)
	assert.Equal(t, "Agua", h.sync.Products()[0].Name)

	h.store.sub(0).onSnapshot([]repository.Document{doc("p2", "Jabón", "J1", "Higiene", 8000, 9, "u1")})
	h.drain()
	require.Len(t, h.sync.Products(), 1)
	assert.Equal(t, int64(9), h.sync.Products()[0].Stock)
}

func TestSynchronizer_LogoutVaciaInmediatamente(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))
	h.store.sub(0).onSnapshot(aguaJabon("u1"))
	h.drain()
	require.Len(t, h.sync.Products(), 2)

	require.NoError(t, h.sync.SetIdentity(context.Background(), nil))

	assert.Empty(t, h.sync.Products())
	assert.Equal(t, catalog.StatusIdle, h.sync.Status())
	assert.True(t, h.store.sub(0).closed)
	assert.Nil(t, h.sync.Identity())
}

func TestSynchronizer_CambioDeIdentidad_DescartaNotificacionesViejas(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))
	h.store.sub(0).onSnapshot(aguaJabon("u1"))
	h.drain()

	// Snapshot de u1 en vuelo cuando cambia la identidad.
	h.store.sub(0).onSnapshot(aguaJabon("u1"))
	require.NoError(t, h.sync.SetIdentity(context.Background(), u2))

	assert.Empty(t, h.sync.Products(), "el cambio de identidad vacía el conjunto")
	assert.True(t, h.store.sub(0).closed)
	require.Equal(t, 2, h.store.subCount())
	assert.Equal(t, "u2", h.store.sub(1).query.OwnerID)

	assert.Equal(t, 0, h.drain(), "la notificación de u1 se descarta")
	assert.Empty(t, h.sync.Products())

	// Un callback tardío de la suscripción cerrada tampoco entra.
	h.store.sub(0).onSnapshot(aguaJabon("u1"))
	h.store.sub(1).onSnapshot([]repository.Document{doc("p9", "Pan", "P1", "Alimentos", 3000, 20, "u2")})
	assert.Equal(t, 1, h.drain())
	require.Len(t, h.sync.Products(), 1)
	assert.Equal(t, "u2", h.sync.Products()[0].OwnerID)
}

func TestSynchronizer_MismaIdentidadNoReabre(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))

	require.NoError(t, h.sync.SetIdentity(context.Background(), &entity.Identity{ID: "u1", Email: "ana@example.com"}))

	assert.Equal(t, 1, h.store.subCount())
	assert.False(t, h.store.sub(0).closed)
}

func TestSynchronizer_NotificacionDespuesDeClose_Descartada(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))
	h.store.sub(0).onSnapshot(aguaJabon("u1"))

	h.sync.Close()

	assert.Equal(t, 0, h.drain())
	assert.Empty(t, h.sync.Products())
	assert.Equal(t, catalog.StatusIdle, h.sync.Status())
}

// ─── Errores ────────────────────────────────────────────────────────────────

func TestSynchronizer_ErrorConservaUltimoConjunto(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.sync.SetIdentity(context.Background(), u1))
	h.store.sub(0).onSnapshot(aguaJabon("u1"))
	h.drain()

	cause := errors.New("permiso denegado")
	h.store.sub(0).onError(cause)
	h.drain()

	assert.Len(t, h.sync.Products(), 2)
	var subErr *domain.SubscriptionError
	require.ErrorAs(t, h.sync.LastError(), &subErr)
	assert.Equal(t, "u1", subErr.OwnerID)
	assert.ErrorIs(t, h.sync.LastError(), cause)

	h.store.sub(0).onSnapshot(aguaJabon("u1")[:1])
	h.drain()
	assert.NoError(t, h.sync.LastError())
	assert.Len(t, h.sync.Products(), 1)
}

func TestSynchronizer_FallaAlAbrir_QuedaIdle(t *testing.T) {
	h := newHarness()
	h.store.subscribeErr = errors.New("sin conexión")

	err := h.sync.SetIdentity(context.Background(), u1)

	var subErr *domain.SubscriptionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, catalog.StatusIdle, h.sync.Status())
	assert.Equal(t, u1, h.sync.Identity())
	assert.ErrorAs(t, h.sync.LastError(), &subErr)
}
