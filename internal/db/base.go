package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryer is the statement surface shared by the pool and transactions.
type Queryer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Base is embedded by repositories. Every statement issued through Q is
// traced and measured; callers bound it with WithTimeout.
type Base struct {
	db      *DB
	timeout time.Duration
}

func NewBase(d *DB, timeout time.Duration) *Base {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Base{db: d, timeout: timeout}
}

func (b *Base) Q() Queryer {
	return instrumentedQueryer{q: b.db.Pool}
}

func (b *Base) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// WithTx runs fn in one transaction under the base timeout, committing only
// when fn succeeds.
func (b *Base) WithTx(ctx context.Context, fn func(ctx context.Context, q Queryer) error) error {
	ctx, cancel := b.WithTimeout(ctx)
	defer cancel()

	tx, err := b.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, instrumentedQueryer{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
