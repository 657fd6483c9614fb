package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

// ProductsChannel canal LISTEN/NOTIFY de cambios de productos. El payload es el owner_id.
const ProductsChannel = "inventario_products"

var _ repository.ChangeFeed = (*Notifier)(nil)

// Notifier ChangeFeed sobre LISTEN/NOTIFY de PostgreSQL. Cada Listen toma una conexión del pool.
type Notifier struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewNotifier construye el notificador.
func NewNotifier(pool *pgxpool.Pool, log zerolog.Logger) *Notifier {
	return &Notifier{pool: pool, log: log}
}

// Publish emite pg_notify con el owner como payload.
func (n *Notifier) Publish(ctx context.Context, ownerID string) error {
	if _, err := n.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, ProductsChannel, ownerID); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Listen ejecuta LISTEN en una conexión dedicada y filtra por owner.
func (n *Notifier) Listen(ctx context.Context, ownerID string, onChange func(), onError func(error)) (func(), error) {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("adquirir conexión para LISTEN: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+ProductsChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("LISTEN: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer func() {
			// La conexión vuelve al pool sin suscripciones pendientes.
			if _, err := conn.Exec(context.Background(), "UNLISTEN *"); err != nil {
				conn.Conn().Close(context.Background())
			}
			conn.Release()
		}()
		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				n.log.Error().Err(err).Str("owner_id", ownerID).Msg("LISTEN interrumpido")
				onError(err)
				return
			}
			if notification.Payload == ownerID {
				onChange()
			}
		}
	}()
	return cancel, nil
}
