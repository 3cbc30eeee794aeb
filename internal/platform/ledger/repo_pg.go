package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const cols = `id, seq, actor, actor_role, action, resource_type, resource_id, details, prev_hash, hash, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Seq, &e.Actor, &e.ActorRole, &e.Action, &e.ResourceType,
		&e.ResourceID, &e.Details, &e.PrevHash, &e.Hash, &e.CreatedAt)
	return &e, err
}

func (r *repoPG) Append(ctx context.Context, e *Entry) error {
	// seq carries a unique constraint, so two concurrent appends racing for
	// the same position cannot both land.
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_ledger (id, seq, actor, actor_role, action, resource_type, resource_id, details, prev_hash, hash, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, e.Seq, e.Actor, e.ActorRole, e.Action, e.ResourceType, e.ResourceID, e.Details, e.PrevHash, e.Hash, e.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSeqConflict
	}
	return err
}

func (r *repoPG) Last(ctx context.Context) (*Entry, error) {
	e, err := scanEntry(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM audit_ledger ORDER BY seq DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_ledger`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM audit_ledger ORDER BY seq DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}

func (r *repoPG) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM audit_ledger
		WHERE resource_type = $1 AND resource_id = $2 ORDER BY seq`, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

func (r *repoPG) All(ctx context.Context) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM audit_ledger ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}
