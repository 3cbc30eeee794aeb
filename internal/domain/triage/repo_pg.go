package triage

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

const entryCols = `id, patient_id, patient_pid, patient_name, nurse_id, nurse_name, symptoms,
	medical_history, vitals, risk_score, priority_level, status, assigned_doctor_id,
	assigned_doctor_name, audit, registered_at, closed_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.PatientID, &e.PatientPID, &e.PatientName, &e.NurseID, &e.NurseName,
		&e.Symptoms, &e.MedicalHistory, &e.Vitals, &e.RiskScore, &e.PriorityLevel, &e.Status,
		&e.AssignedDoctorID, &e.AssignedDoctorName, &e.Audit, &e.RegisteredAt, &e.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	audit, err := json.Marshal(e.Audit)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO triage_entry (id, patient_id, patient_pid, patient_name, nurse_id, nurse_name,
			symptoms, medical_history, vitals, risk_score, priority_level, status, audit, registered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		e.ID, e.PatientID, e.PatientPID, e.PatientName, e.NurseID, e.NurseName,
		e.Symptoms, e.MedicalHistory, e.Vitals, e.RiskScore, e.PriorityLevel, e.Status,
		audit, e.RegisteredAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return scanEntry(r.conn(ctx).QueryRow(ctx, `SELECT `+entryCols+` FROM triage_entry WHERE id = $1`, id))
}

func (r *repoPG) ListByStatus(ctx context.Context, statuses []workflow.Status) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM triage_entry
		WHERE status = ANY($1)
		ORDER BY risk_score ASC, registered_at ASC`, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM triage_entry`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM triage_entry
		ORDER BY registered_at DESC LIMIT $1 OFFSET $2`, limit, offset)
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
		UPDATE triage_entry
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

func (r *repoPG) Assign(ctx context.Context, id uuid.UUID, from, to workflow.Status, doctorID uuid.UUID, doctorName string, rec workflow.AuditRecord) error {
	recJSON, err := json.Marshal([]workflow.AuditRecord{rec})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE triage_entry
		SET status = $3, assigned_doctor_id = $4, assigned_doctor_name = $5, audit = audit || $6::jsonb
		WHERE id = $1 AND status = $2`,
		id, from, to, doctorID, doctorName, recJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casMiss(ctx, id)
	}
	return nil
}

// casMiss distinguishes a lost race from a missing row after a zero-row CAS
// update.
func (r *repoPG) casMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM triage_entry WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return workflow.ErrResourceNotFound
	}
	return workflow.ErrConcurrentModification
}

func collectEntries(rows pgx.Rows) ([]*Entry, error) {
	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.PatientPID, &e.PatientName, &e.NurseID, &e.NurseName,
			&e.Symptoms, &e.MedicalHistory, &e.Vitals, &e.RiskScore, &e.PriorityLevel, &e.Status,
			&e.AssignedDoctorID, &e.AssignedDoctorName, &e.Audit, &e.RegisteredAt, &e.ClosedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func statusStrings(statuses []workflow.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
