// Package memstore implementa los puertos del store y de usuarios en memoria. Se usa con
// STORE_DRIVER=memory y en los tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

var _ repository.DocumentStore = (*ProductStore)(nil)

// ProductStore colección de productos con suscripciones en vivo.
// Cada escritura genera un snapshot nuevo para las suscripciones del owner afectado.
type ProductStore struct {
	mu   sync.RWMutex
	docs map[string]entity.ProductData
	subs map[*subscription]struct{}
}

// NewProductStore crea un store vacío.
func NewProductStore() *ProductStore {
	return &ProductStore{
		docs: make(map[string]entity.ProductData),
		subs: make(map[*subscription]struct{}),
	}
}

// Subscribe registra la suscripción y encola el snapshot inicial. Los callbacks corren en una
// goroutine propia de la suscripción, nunca dentro de Subscribe. La suscripción se cierra al
// llamar a la función devuelta o al cancelarse ctx.
func (s *ProductStore) Subscribe(ctx context.Context, q repository.ProductQuery, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) (repository.Unsubscribe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := newSubscription(q, onSnapshot, onError)

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	sub.push(delivery{docs: s.query(q)})
	s.mu.Unlock()

	go sub.run()

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		sub.stop()
	}
	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-sub.done:
		}
	}()
	return unsubscribe, nil
}

// Add inserta el documento con un id nuevo.
func (s *ProductStore) Add(ctx context.Context, data entity.ProductData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = copyData(data)
	s.broadcast(data.OwnerID)
	return id, nil
}

// Update reemplaza los campos de negocio y el updatedAt de un documento de ownerID.
func (s *ProductStore) Update(ctx context.Context, ownerID, id string, fields entity.ProductFields, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	d.ProductFields = fields
	d.UpdatedAt = &updatedAt
	s.docs[id] = d
	s.broadcast(d.OwnerID)
	return nil
}

// Delete elimina un documento de ownerID.
func (s *ProductStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	delete(s.docs, id)
	s.broadcast(d.OwnerID)
	return nil
}

// FailSubscriptions entrega err a las suscripciones activas del owner (simula permisos o red).
func (s *ProductStore) FailSubscriptions(ownerID string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sub := range s.subs {
		if sub.query.OwnerID == ownerID {
			sub.push(delivery{err: err})
		}
	}
}

// Len cantidad total de documentos.
func (s *ProductStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// broadcast se llama con s.mu tomado: el orden de los snapshots sigue el de las escrituras.
func (s *ProductStore) broadcast(ownerID string) {
	var snapshot []repository.Document
	for sub := range s.subs {
		if sub.query.OwnerID != ownerID {
			continue
		}
		if snapshot == nil {
			snapshot = s.query(sub.query)
		}
		sub.push(delivery{docs: snapshot})
	}
}

// query owner == q.OwnerID ordenado por nombre (y por id ante empates).
func (s *ProductStore) query(q repository.ProductQuery) []repository.Document {
	docs := make([]repository.Document, 0)
	for id, d := range s.docs {
		if d.OwnerID == q.OwnerID {
			docs = append(docs, repository.Document{ID: id, Data: copyData(d)})
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Data.Name != docs[j].Data.Name {
			return docs[i].Data.Name < docs[j].Data.Name
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

func copyData(d entity.ProductData) entity.ProductData {
	if d.UpdatedAt != nil {
		t := *d.UpdatedAt
		d.UpdatedAt = &t
	}
	return d
}
