package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/workflow"
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

const entryCols = `id, patient_id, description, quantity, unit_price, total_amount, status, created_at, paid_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO billing_entry (id, patient_id, description, quantity, unit_price, total_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		e.ID, e.PatientID, e.Description, e.Quantity, e.UnitPrice, e.TotalAmount, e.Status).
		Scan(&e.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	var e Entry
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+entryCols+` FROM billing_entry WHERE id = $1`, id).
		Scan(&e.ID, &e.PatientID, &e.Description, &e.Quantity, &e.UnitPrice, &e.TotalAmount,
			&e.Status, &e.CreatedAt, &e.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM billing_entry`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM billing_entry
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM billing_entry
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *repoPG) ListUnpaidByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM billing_entry
		WHERE patient_id = $1 AND status = $2 ORDER BY created_at ASC`, patientID, StatusUnpaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *repoPG) MarkPaid(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_entry SET status = $2, paid_at = now()
		WHERE id = $1 AND status = $3`, id, StatusPaid, StatusUnpaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM billing_entry WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return workflow.ErrResourceNotFound
		}
		return workflow.ErrConcurrentModification
	}
	return nil
}

func (r *repoPG) MarkAllPaid(ctx context.Context, patientID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_entry SET status = $2, paid_at = now()
		WHERE patient_id = $1 AND status = $3`, patientID, StatusPaid, StatusUnpaid)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func collectEntries(rows pgx.Rows) ([]*Entry, error) {
	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Description, &e.Quantity, &e.UnitPrice,
			&e.TotalAmount, &e.Status, &e.CreatedAt, &e.PaidAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
