package catalog_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

// subscription suscripción registrada por fakeStore; el test dispara los callbacks.
type subscription struct {
	query      repository.ProductQuery
	onSnapshot repository.SnapshotFunc
	onError    repository.ErrorFunc
	closed     bool
}

// fakeStore store en memoria que no entrega nada por sí solo.
type fakeStore struct {
	mu           sync.Mutex
	subs         []*subscription
	subscribeErr error
	writeErr     error
	docs         map[string]entity.ProductData
	nextID       int

	lastUpdatedAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]entity.ProductData{}}
}

func (f *fakeStore) Subscribe(_ context.Context, q repository.ProductQuery, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) (repository.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	s := &subscription{query: q, onSnapshot: onSnapshot, onError: onError}
	f.subs = append(f.subs, s)
	return func() {
		f.mu.Lock()
		s.closed = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) Add(_ context.Context, data entity.ProductData) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.docs[id] = data
	return id, nil
}

func (f *fakeStore) Update(_ context.Context, ownerID, id string, fields entity.ProductFields, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	d, ok := f.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	d.ProductFields = fields
	d.UpdatedAt = &updatedAt
	f.docs[id] = d
	f.lastUpdatedAt = updatedAt
	return nil
}

func (f *fakeStore) Delete(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	d, ok := f.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeStore) sub(i int) *subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[i]
}

func (f *fakeStore) subCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func doc(id, name, code, category string, price, stock int64, owner string) repository.Document {
	return repository.Document{ID: id, Data: entity.ProductData{
		ProductFields: entity.ProductFields{Name: name, Code: code, Category: category, Price: price, Stock: stock},
		OwnerID:       owner,
	}}
}
