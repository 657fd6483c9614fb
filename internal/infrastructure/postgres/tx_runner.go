package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool     *pgxpool.Pool
	products *ProductStore
}

// NewTxRunner construye el runner. products aporta el ChangeFeed y el logger de los stores de la tx.
func NewTxRunner(pool *pgxpool.Pool, products *ProductStore) *TxRunner {
	return &TxRunner{pool: pool, products: products}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los avisos de cambios se publican solo después del Commit.
func (r *TxRunner) Run(ctx context.Context, fn func(products *ProductStore, users *UserRepo) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	products := r.products.inTx(tx)
	users := NewUserRepository(tx)

	if err := fn(products, users); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	products.flush(ctx)
	return nil
}
