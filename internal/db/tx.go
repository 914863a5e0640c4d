package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx. Repositories
// run against it so the same code works inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// TxFromContext returns the transaction bound to ctx, if any.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// Conn returns the transaction bound to ctx, or fallback when ctx carries
// none. Repositories call this so writes issued inside WithinTx share one
// atomic unit of work.
func Conn(ctx context.Context, fallback DBTX) DBTX {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// TxRunner runs a function inside one atomic transaction. Every logical
// operation (login, MFA verification, renewal, invalidation) executes
// under a single WithinTx call: all mutations commit together or roll
// back together.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Runner implements TxRunner on a *sql.DB. Nested WithinTx calls join the
// ambient transaction instead of opening a new one, so services can
// compose without breaking atomicity.
type Runner struct {
	db *sql.DB
}

// NewRunner returns a Runner over db.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// WithinTx begins a transaction, binds it to the context passed to fn,
// and commits when fn returns nil. Any error or panic rolls back.
func (r *Runner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	done = true
	return nil
}
