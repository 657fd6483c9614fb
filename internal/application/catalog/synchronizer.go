// Package catalog mantiene la proyección local de los productos de la identidad actual
// (Synchronizer) y envía las escrituras al store remoto (Gateway).
package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
	"github.com/jhoicas/Inventario-sync/pkg/metrics"
)

// Status estado de la suscripción.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubscribed Status = "subscribed"
)

// Notification payload de una suscripción, etiquetado con su generación.
// Err != nil indica una falla de la suscripción; si no, Docs es el snapshot completo.
type Notification struct {
	Generation uint64
	OwnerID    string
	Docs       []repository.Document
	Err        error
}

// Synchronizer abre una suscripción por identidad y reemplaza el conjunto de productos con
// cada snapshot.
//
// No es seguro para uso concurrente: SetIdentity y Apply corren en la goroutine del loop.
// Los callbacks del store solo llaman a deliver; nunca tocan el estado.
type Synchronizer struct {
	store   repository.DocumentStore
	deliver func(Notification)
	log     zerolog.Logger

	generation  uint64
	status      Status
	identity    *entity.Identity
	unsubscribe repository.Unsubscribe
	products    []entity.Product
	lastErr     error
}

// NewSynchronizer construye el sincronizador en estado Idle. deliver debe encolar la
// notificación para que el loop la aplique con Apply.
func NewSynchronizer(store repository.DocumentStore, deliver func(Notification), log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		store:    store,
		deliver:  deliver,
		log:      log,
		status:   StatusIdle,
		products: []entity.Product{},
	}
}

// SetIdentity aplica un cambio de identidad:
//   - misma identidad: no hace nada;
//   - nil: cierra la suscripción y vacía el conjunto;
//   - otra identidad: cierra la anterior, vacía el conjunto y abre una nueva.
//
// Si la suscripción no se puede abrir el error queda en LastError y el estado en Idle.
func (s *Synchronizer) SetIdentity(ctx context.Context, id *entity.Identity) error {
	if id.Same(s.identity) {
		s.identity = id
		return nil
	}
	s.close()
	s.identity = id
	if id == nil {
		return nil
	}
	return s.open(ctx, id.ID)
}

// Close cierra la suscripción actual y vacía el conjunto. Idempotente.
func (s *Synchronizer) Close() {
	s.close()
	s.identity = nil
}

// Apply aplica una notificación. Devuelve false si pertenece a una suscripción ya cerrada.
func (s *Synchronizer) Apply(n Notification) bool {
	if s.status != StatusSubscribed || n.Generation != s.generation {
		metrics.SnapshotsDiscarded.Inc()
		s.log.Debug().Uint64("generation", n.Generation).Uint64("current", s.generation).
			Msg("notificación descartada de una suscripción cerrada")
		return false
	}
	if n.Err != nil {
		metrics.SubscriptionErrors.Inc()
		s.lastErr = &domain.SubscriptionError{OwnerID: n.OwnerID, Err: n.Err}
		s.log.Error().Err(n.Err).Str("owner_id", n.OwnerID).
			Msg("falla en la suscripción de productos; se conserva el último conjunto")
		return true
	}

	products := make([]entity.Product, 0, len(n.Docs))
	for _, d := range n.Docs {
		products = append(products, entity.Product{ID: d.ID, ProductData: d.Data})
	}
	s.products = products
	s.lastErr = nil
	metrics.SnapshotsApplied.Inc()
	metrics.ProductSetSize.Set(float64(len(products)))
	s.log.Debug().Str("owner_id", n.OwnerID).Int("products", len(products)).Msg("snapshot aplicado")
	return true
}

// Products conjunto actual en orden del store. El slice no se modifica después de publicado.
func (s *Synchronizer) Products() []entity.Product { return s.products }

// Status estado de la suscripción.
func (s *Synchronizer) Status() Status { return s.status }

// Identity identidad para la que se sincroniza (nil si ninguna).
func (s *Synchronizer) Identity() *entity.Identity { return s.identity }

// LastError último *domain.SubscriptionError; se limpia con el siguiente snapshot.
func (s *Synchronizer) LastError() error { return s.lastErr }

func (s *Synchronizer) open(ctx context.Context, ownerID string) error {
	s.generation++
	gen := s.generation
	q := repository.ProductQuery{OwnerID: ownerID, OrderBy: repository.OrderByName}

	unsub, err := s.store.Subscribe(ctx, q,
		func(docs []repository.Document) {
			s.deliver(Notification{Generation: gen, OwnerID: ownerID, Docs: docs})
		},
		func(err error) {
			s.deliver(Notification{Generation: gen, OwnerID: ownerID, Err: err})
		},
	)
	if err != nil {
		metrics.SubscriptionErrors.Inc()
		s.lastErr = &domain.SubscriptionError{OwnerID: ownerID, Err: err}
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("no se pudo abrir la suscripción de productos")
		return s.lastErr
	}
	s.unsubscribe = unsub
	s.status = StatusSubscribed
	s.log.Info().Str("owner_id", ownerID).Uint64("generation", gen).Msg("suscripción de productos abierta")
	return nil
}

func (s *Synchronizer) close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
		s.log.Info().Uint64("generation", s.generation).Msg("suscripción de productos cerrada")
	}
	s.generation++
	s.status = StatusIdle
	s.products = []entity.Product{}
	s.lastErr = nil
	metrics.ProductSetSize.Set(0)
}
