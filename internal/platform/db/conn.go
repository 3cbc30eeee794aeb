package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// Querier is the subset of pgx operations repositories run their statements
// through. Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ConnFromContext returns the transaction bound to ctx by InTx, or nil when
// the caller is not inside a transaction. Repositories check this before
// falling back to their pool.
func ConnFromContext(ctx context.Context) Querier {
	q, _ := ctx.Value(connKey).(Querier)
	return q
}

// TxFunc runs fn atomically. Services hold one of these instead of a pool;
// Runner binds it to a real pool, tests pass a passthrough.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// Runner returns a TxFunc backed by pool.
func Runner(pool *pgxpool.Pool) TxFunc {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return InTx(ctx, pool, fn)
	}
}

// InTx runs fn inside a single transaction. The transaction is stashed in the
// context so that every repository call made from fn joins it. Cross-domain
// writes that must land together (a consultation closing its triage entry
// while raising invoices and orders) go through here.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, connKey, Querier(tx))); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
