// Package redis implementa el aviso de cambios de productos sobre Redis Pub/Sub.
package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
	"github.com/jhoicas/Inventario-sync/pkg/config"
)

const channelPrefix = "inventario:products:"

var _ repository.ChangeFeed = (*Notifier)(nil)

// Notifier ChangeFeed sobre Redis Pub/Sub: un canal por owner.
type Notifier struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewClient conecta y verifica con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	const op = "redis.NewClient"
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// NewNotifier construye el notificador sobre un cliente ya conectado.
func NewNotifier(client *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{client: client, log: log}
}

func channel(ownerID string) string { return channelPrefix + ownerID }

// Publish avisa a los suscriptores del owner.
func (n *Notifier) Publish(ctx context.Context, ownerID string) error {
	const op = "redis.Publish"
	if err := n.client.Publish(ctx, channel(ownerID), "changed").Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Listen se suscribe al canal del owner y espera la confirmación antes de volver,
// así ningún Publish posterior se pierde.
func (n *Notifier) Listen(ctx context.Context, ownerID string, onChange func(), onError func(error)) (func(), error) {
	const op = "redis.Listen"
	sub := n.client.Subscribe(ctx, channel(ownerID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	msgs := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					if ctx.Err() == nil {
						n.log.Error().Str("owner_id", ownerID).Msg("canal de redis cerrado")
						onError(fmt.Errorf("%s: canal cerrado", op))
					}
					return
				}
				onChange()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
		})
	}, nil
}
