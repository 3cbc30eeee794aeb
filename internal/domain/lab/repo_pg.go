package lab

import (
	"context"
	"errors"
	"time"

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

const testCols = `id, name, department, unit_price, created_at`

func (r *repoPG) CreateTest(ctx context.Context, t *Test) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_test (id, name, department, unit_price)
		VALUES ($1, lower($2), $3, $4)
		RETURNING name, created_at`,
		t.ID, t.Name, t.Department, t.UnitPrice).Scan(&t.Name, &t.CreatedAt)
}

func (r *repoPG) GetTestByName(ctx context.Context, name string) (*Test, error) {
	var t Test
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+testCols+` FROM lab_test WHERE name = lower($1)`, name).
		Scan(&t.ID, &t.Name, &t.Department, &t.UnitPrice, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) ListTests(ctx context.Context) ([]*Test, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+testCols+` FROM lab_test ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Test
	for rows.Next() {
		var t Test
		if err := rows.Scan(&t.ID, &t.Name, &t.Department, &t.UnitPrice, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteTest(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_test WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

const orderCols = `id, consultation_id, patient_id, patient_pid, patient_name, test_name, status,
	result, ordered_by, ordered_at, collected_by, collected_at, verified_by, verified_at`

func (r *repoPG) CreateOrder(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_order (id, consultation_id, patient_id, patient_pid, patient_name,
			test_name, status, ordered_by, ordered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.ConsultationID, o.PatientID, o.PatientPID, o.PatientName,
		o.TestName, o.Status, o.OrderedBy, o.OrderedAt)
	return err
}

func (r *repoPG) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM lab_order WHERE id = $1`, id).
		Scan(&o.ID, &o.ConsultationID, &o.PatientID, &o.PatientPID, &o.PatientName, &o.TestName,
			&o.Status, &o.Result, &o.OrderedBy, &o.OrderedAt, &o.CollectedBy, &o.CollectedAt,
			&o.VerifiedBy, &o.VerifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) ListOrdersByStatus(ctx context.Context, statuses []workflow.Status) ([]*Order, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM lab_order
		WHERE status = ANY($1)
		ORDER BY ordered_at ASC`, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repoPG) ListOrdersByPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM lab_order
		WHERE patient_id = $1 ORDER BY ordered_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repoPG) MarkCollected(ctx context.Context, id uuid.UUID, collectedBy string, collectedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_order
		SET status = $2, collected_by = $3, collected_at = $4
		WHERE id = $1 AND status = $5`,
		id, workflow.LabSampleCollected, collectedBy, collectedAt, workflow.LabPendingSample)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casMiss(ctx, id)
	}
	return nil
}

func (r *repoPG) MarkVerified(ctx context.Context, id uuid.UUID, result, verifiedBy string, verifiedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_order
		SET status = $2, result = $3, verified_by = $4, verified_at = $5
		WHERE id = $1 AND status = $6`,
		id, workflow.LabResultVerified, result, verifiedBy, verifiedAt, workflow.LabSampleCollected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casMiss(ctx, id)
	}
	return nil
}

func (r *repoPG) casMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM lab_order WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return workflow.ErrResourceNotFound
	}
	return workflow.ErrConcurrentModification
}

func collectOrders(rows pgx.Rows) ([]*Order, error) {
	var items []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ConsultationID, &o.PatientID, &o.PatientPID, &o.PatientName,
			&o.TestName, &o.Status, &o.Result, &o.OrderedBy, &o.OrderedAt, &o.CollectedBy,
			&o.CollectedAt, &o.VerifiedBy, &o.VerifiedAt); err != nil {
			return nil, err
		}
		items = append(items, &o)
	}
	return items, rows.Err()
}
