package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
	"github.com/jhoicas/Inventario-sync/pkg/metrics"
)

// Gateway envía create/update/delete al store. No toca el conjunto local: los cambios vuelven
// por la suscripción. Sin reintentos; toda falla es *domain.WriteError.
type Gateway struct {
	store repository.DocumentStore
	log   zerolog.Logger
	now   func() time.Time
}

// GatewayOption configura el Gateway.
type GatewayOption func(*Gateway)

// WithClock reemplaza el reloj usado para createdAt/updatedAt.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// NewGateway construye el gateway de escrituras.
func NewGateway(store repository.DocumentStore, log zerolog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Create agrega un producto del owner sellando OwnerID y CreatedAt. Devuelve el id asignado.
func (g *Gateway) Create(ctx context.Context, ownerID string, fields entity.ProductFields) (string, error) {
	if ownerID == "" {
		return "", g.fail(domain.WriteCreate, "", domain.ErrUnauthorized)
	}
	start := time.Now()
	id, err := g.store.Add(ctx, entity.ProductData{
		ProductFields: fields,
		OwnerID:       ownerID,
		CreatedAt:     g.now().UTC(),
	})
	g.observe(domain.WriteCreate, start, err)
	if err != nil {
		return "", g.fail(domain.WriteCreate, "", err)
	}
	g.log.Info().Str("product_id", id).Str("owner_id", ownerID).Msg("producto creado")
	return id, nil
}

// Update reemplaza los campos de negocio y sella UpdatedAt. Gana la última escritura.
// Solo el owner puede editar su producto.
func (g *Gateway) Update(ctx context.Context, ownerID, id string, fields entity.ProductFields) error {
	if ownerID == "" {
		return g.fail(domain.WriteUpdate, id, domain.ErrUnauthorized)
	}
	start := time.Now()
	err := g.store.Update(ctx, ownerID, id, fields, g.now().UTC())
	g.observe(domain.WriteUpdate, start, err)
	if err != nil {
		return g.fail(domain.WriteUpdate, id, err)
	}
	g.log.Info().Str("product_id", id).Msg("producto actualizado")
	return nil
}

// Delete elimina el producto del owner. Un id inexistente o ajeno falla.
func (g *Gateway) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return g.fail(domain.WriteDelete, id, domain.ErrUnauthorized)
	}
	start := time.Now()
	err := g.store.Delete(ctx, ownerID, id)
	g.observe(domain.WriteDelete, start, err)
	if err != nil {
		return g.fail(domain.WriteDelete, id, err)
	}
	g.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

func (g *Gateway) fail(op domain.WriteOp, id string, err error) error {
	g.log.Error().Err(err).Str("op", string(op)).Str("product_id", id).Msg("falla de escritura")
	return &domain.WriteError{Op: op, ProductID: id, Err: err}
}

func (g *Gateway) observe(op domain.WriteOp, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.Writes.WithLabelValues(string(op), result).Inc()
	metrics.WriteDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}
