package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

var _ repository.DocumentStore = (*ProductStore)(nil)

// ProductStore colección de productos sobre PostgreSQL con suscripción en vivo vía ChangeFeed.
// Usable con pool o tx (Querier); dentro de una tx los avisos se difieren hasta el commit.
type ProductStore struct {
	q    Querier
	feed repository.ChangeFeed
	log  zerolog.Logger

	deferred bool
	mu       sync.Mutex
	pending  map[string]struct{}
}

// NewProductStore construye el adaptador. Pasar pool o tx (Querier).
func NewProductStore(q Querier, feed repository.ChangeFeed, log zerolog.Logger) *ProductStore {
	return &ProductStore{q: q, feed: feed, log: log}
}

const selectProducts = `
	SELECT id, name, code, category, price, stock, owner_id, created_at, updated_at
	FROM products WHERE owner_id = $1 ORDER BY name ASC, id ASC`

// Subscribe escucha cambios del owner y entrega el snapshot inicial y uno por cambio desde
// una goroutine propia. Varios avisos seguidos se agrupan en una sola consulta: cada snapshot
// es el estado completo, así que el orden se conserva.
func (s *ProductStore) Subscribe(ctx context.Context, q repository.ProductQuery, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) (repository.Unsubscribe, error) {
	if q.OrderBy != "" && q.OrderBy != repository.OrderByName {
		return nil, fmt.Errorf("%w: orden %q no soportado", domain.ErrInvalidInput, q.OrderBy)
	}
	ctx, cancel := context.WithCancel(ctx)
	changed := make(chan struct{}, 1)
	failed := make(chan error, 1)

	trigger := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	stop, err := s.feed.Listen(ctx, q.OwnerID, trigger, func(err error) {
		select {
		case failed <- err:
		default:
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}
	trigger() // snapshot inicial

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-failed:
				if ctx.Err() == nil {
					onError(err)
				}
				return
			case <-changed:
			}
			docs, err := s.query(ctx, q.OwnerID)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				onError(err)
				continue
			}
			onSnapshot(docs)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			stop()
		})
	}, nil
}

// Add inserta el producto con un id nuevo.
func (s *ProductStore) Add(ctx context.Context, data entity.ProductData) (string, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO products (id, owner_id, name, code, category, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.q.Exec(ctx, query,
		id, data.OwnerID, data.Name, data.Code, data.Category,
		decimal.NewFromInt(data.Price), data.Stock, data.CreatedAt, data.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrDuplicate
		}
		return "", fmt.Errorf("insert product: %w", err)
	}
	s.changed(ctx, data.OwnerID)
	return id, nil
}

// Update reemplaza los campos de negocio y updated_at de un producto de ownerID.
func (s *ProductStore) Update(ctx context.Context, ownerID, id string, fields entity.ProductFields, updatedAt time.Time) error {
	query := `
		UPDATE products SET name = $3, code = $4, category = $5, price = $6, stock = $7, updated_at = $8
		WHERE id = $1 AND owner_id = $2
		RETURNING id`
	err := s.q.QueryRow(ctx, query,
		id, ownerID, fields.Name, fields.Code, fields.Category, decimal.NewFromInt(fields.Price), fields.Stock, updatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("update product: %w", s.missing(ctx, id, err))
	}
	s.changed(ctx, ownerID)
	return nil
}

// Delete elimina un producto de ownerID.
func (s *ProductStore) Delete(ctx context.Context, ownerID, id string) error {
	err := s.q.QueryRow(ctx, `DELETE FROM products WHERE id = $1 AND owner_id = $2 RETURNING id`, id, ownerID).Scan(&id)
	if err != nil {
		return fmt.Errorf("delete product: %w", s.missing(ctx, id, err))
	}
	s.changed(ctx, ownerID)
	return nil
}

// missing distingue, cuando la escritura no tocó filas, un id inexistente de uno de otro owner.
func (s *ProductStore) missing(ctx context.Context, id string, err error) error {
	if err = notFound(err); !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var exists bool
	if err := s.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrForbidden
	}
	return domain.ErrNotFound
}

func (s *ProductStore) query(ctx context.Context, ownerID string) ([]repository.Document, error) {
	rows, err := s.q.Query(ctx, selectProducts, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	docs := make([]repository.Document, 0)
	for rows.Next() {
		var (
			d     repository.Document
			price decimal.Decimal
		)
		if err := rows.Scan(
			&d.ID, &d.Data.Name, &d.Data.Code, &d.Data.Category, &price, &d.Data.Stock,
			&d.Data.OwnerID, &d.Data.CreatedAt, &d.Data.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		d.Data.Price = price.IntPart()
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// changed avisa al feed; dentro de una tx lo guarda para después del commit.
// Una falla del aviso no revierte la escritura.
func (s *ProductStore) changed(ctx context.Context, ownerID string) {
	if s.deferred {
		s.mu.Lock()
		s.pending[ownerID] = struct{}{}
		s.mu.Unlock()
		return
	}
	if err := s.feed.Publish(ctx, ownerID); err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("no se pudo publicar el cambio")
	}
}

func (s *ProductStore) inTx(q Querier) *ProductStore {
	return &ProductStore{q: q, feed: s.feed, log: s.log, deferred: true, pending: make(map[string]struct{})}
}

func (s *ProductStore) flush(ctx context.Context) {
	s.mu.Lock()
	owners := s.pending
	s.pending = make(map[string]struct{})
	s.mu.Unlock()
	for owner := range owners {
		if err := s.feed.Publish(ctx, owner); err != nil {
			s.log.Error().Err(err).Str("owner_id", owner).Msg("no se pudo publicar el cambio")
		}
	}
}
