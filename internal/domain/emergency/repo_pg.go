package emergency

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

const caseCols = `id, patient_id, patient_pid, patient_name, registered_by_id, registered_by_name,
	pre_hospital_info, presenting_symptoms, initial_vitals, triage_score, triage_level, status,
	current_location, assigned_doctor_id, assigned_doctor_name, treatment_orders, case_notes,
	disposition, audit, registered_at, closed_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.PatientID, &c.PatientPID, &c.PatientName, &c.RegisteredByID,
		&c.RegisteredByName, &c.PreHospitalInfo, &c.PresentingSymptoms, &c.InitialVitals,
		&c.TriageScore, &c.TriageLevel, &c.Status, &c.CurrentLocation, &c.AssignedDoctorID,
		&c.AssignedDoctorName, &c.TreatmentOrders, &c.CaseNotes, &c.Disposition, &c.Audit,
		&c.RegisteredAt, &c.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Case) error {
	c.ID = uuid.New()
	audit, err := json.Marshal(c.Audit)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO er_case (id, patient_id, patient_pid, patient_name, registered_by_id,
			registered_by_name, pre_hospital_info, presenting_symptoms, initial_vitals,
			triage_score, triage_level, status, current_location, treatment_orders,
			case_notes, audit, registered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'[]','[]',$14,$15)`,
		c.ID, c.PatientID, c.PatientPID, c.PatientName, c.RegisteredByID, c.RegisteredByName,
		c.PreHospitalInfo, c.PresentingSymptoms, c.InitialVitals, c.TriageScore, c.TriageLevel,
		c.Status, c.CurrentLocation, audit, c.RegisteredAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx, `SELECT `+caseCols+` FROM er_case WHERE id = $1`, id))
}

func (r *repoPG) ListByStatus(ctx context.Context, statuses []workflow.Status) ([]*Case, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+caseCols+` FROM er_case
		WHERE status = ANY($1)
		ORDER BY triage_score ASC, registered_at ASC`, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Case, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM er_case`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+caseCols+` FROM er_case
		ORDER BY registered_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectCases(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Case, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+caseCols+` FROM er_case
		WHERE patient_id = $1 ORDER BY registered_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
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
		UPDATE er_case
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
		UPDATE er_case
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

func (r *repoPG) UpdateLocation(ctx context.Context, id uuid.UUID, location string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE er_case SET current_location = $2 WHERE id = $1`, id, location)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

func (r *repoPG) AddNote(ctx context.Context, id uuid.UUID, note CaseNote) error {
	return r.appendDoc(ctx, id, `case_notes`, note)
}

func (r *repoPG) AddOrder(ctx context.Context, id uuid.UUID, order TreatmentOrder) error {
	return r.appendDoc(ctx, id, `treatment_orders`, order)
}

func (r *repoPG) appendDoc(ctx context.Context, id uuid.UUID, column string, doc interface{}) error {
	docJSON, err := json.Marshal([]interface{}{doc})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", column, err)
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE er_case SET `+column+` = `+column+` || $2::jsonb WHERE id = $1`,
		id, docJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

func (r *repoPG) SetDisposition(ctx context.Context, id uuid.UUID, from, to workflow.Status, disp Disposition, rec workflow.AuditRecord) error {
	dispJSON, err := json.Marshal(disp)
	if err != nil {
		return fmt.Errorf("marshal disposition: %w", err)
	}
	recJSON, err := json.Marshal([]workflow.AuditRecord{rec})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE er_case
		SET status = $3, disposition = $4::jsonb, audit = audit || $5::jsonb,
			closed_at = COALESCE(closed_at, now())
		WHERE id = $1 AND status = $2`,
		id, from, to, dispJSON, recJSON)
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
	if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM er_case WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return workflow.ErrResourceNotFound
	}
	return workflow.ErrConcurrentModification
}

func collectCases(rows pgx.Rows) ([]*Case, error) {
	var items []*Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.PatientID, &c.PatientPID, &c.PatientName, &c.RegisteredByID,
			&c.RegisteredByName, &c.PreHospitalInfo, &c.PresentingSymptoms, &c.InitialVitals,
			&c.TriageScore, &c.TriageLevel, &c.Status, &c.CurrentLocation, &c.AssignedDoctorID,
			&c.AssignedDoctorName, &c.TreatmentOrders, &c.CaseNotes, &c.Disposition, &c.Audit,
			&c.RegisteredAt, &c.ClosedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
