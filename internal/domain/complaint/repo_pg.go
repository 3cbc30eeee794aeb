package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

const complaintCols = `id, patient_id, patient_name, patient_contact, complaint_text, channel_source,
	category, urgency, status, assigned_to, updates, audit, created_by, created_at, closed_at`

func scanComplaint(row pgx.Row) (*Complaint, error) {
	var c Complaint
	err := row.Scan(&c.ID, &c.PatientID, &c.PatientName, &c.PatientContact, &c.Text, &c.ChannelSource,
		&c.Category, &c.Urgency, &c.Status, &c.AssignedTo, &c.Updates, &c.Audit, &c.CreatedBy,
		&c.CreatedAt, &c.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Complaint) error {
	c.ID = uuid.New()
	audit, err := json.Marshal(c.Audit)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO complaint (id, patient_id, patient_name, patient_contact, complaint_text,
			channel_source, category, urgency, status, updates, audit, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'[]',$10,$11,$12)`,
		c.ID, c.PatientID, c.PatientName, c.PatientContact, c.Text,
		c.ChannelSource, c.Category, c.Urgency, c.Status, audit, c.CreatedBy, c.CreatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Complaint, error) {
	return scanComplaint(r.conn(ctx).QueryRow(ctx, `SELECT `+complaintCols+` FROM complaint WHERE id = $1`, id))
}

func (r *repoPG) ListOpen(ctx context.Context, statuses []workflow.Status) ([]*Complaint, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+complaintCols+` FROM complaint
		WHERE status = ANY($1)
		ORDER BY created_at ASC`, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComplaints(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Complaint, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM complaint`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+complaintCols+` FROM complaint
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectComplaints(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) AddUpdate(ctx context.Context, id uuid.UUID, upd Update) error {
	updJSON, err := json.Marshal([]Update{upd})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE complaint SET updates = updates || $2::jsonb WHERE id = $1`, id, updJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to workflow.Status, rec workflow.AuditRecord, closed bool) error {
	recJSON, err := json.Marshal([]workflow.AuditRecord{rec})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	closedExpr := `closed_at`
	if closed {
		closedExpr = `COALESCE(closed_at, now())`
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE complaint
		SET status = $3, audit = audit || $4::jsonb, closed_at = `+closedExpr+`
		WHERE id = $1 AND status = $2`,
		id, from, to, recJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casMiss(ctx, id)
	}
	return nil
}

func (r *repoPG) Assign(ctx context.Context, id uuid.UUID, from, to workflow.Status, assignee string, rec workflow.AuditRecord) error {
	recJSON, err := json.Marshal([]workflow.AuditRecord{rec})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE complaint
		SET status = $3, assigned_to = $4, audit = audit || $5::jsonb
		WHERE id = $1 AND status = $2`,
		id, from, to, assignee, recJSON)
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
	if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM complaint WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return workflow.ErrResourceNotFound
	}
	return workflow.ErrConcurrentModification
}

func collectComplaints(rows pgx.Rows) ([]*Complaint, error) {
	var items []*Complaint
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(&c.ID, &c.PatientID, &c.PatientName, &c.PatientContact, &c.Text,
			&c.ChannelSource, &c.Category, &c.Urgency, &c.Status, &c.AssignedTo, &c.Updates,
			&c.Audit, &c.CreatedBy, &c.CreatedAt, &c.ClosedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
