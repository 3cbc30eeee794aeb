package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

const apptCols = `id, patient_id, patient_pid, patient_name, doctor_id, doctor_name, department,
	appointment_time, payment_status, status, audit, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientPID, &a.PatientName, &a.DoctorID, &a.DoctorName,
		&a.Department, &a.AppointmentTime, &a.PaymentStatus, &a.Status, &a.Audit, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	audit, err := json.Marshal(a.Audit)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, patient_pid, patient_name, doctor_id, doctor_name,
			department, appointment_time, payment_status, status, audit, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.PatientID, a.PatientPID, a.PatientName, a.DoctorID, a.DoctorName,
		a.Department, a.AppointmentTime, a.PaymentStatus, a.Status, audit, a.CreatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) ListQueue(ctx context.Context, statuses []workflow.Status) ([]*Appointment, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status = ANY($1)
		ORDER BY appointment_time ASC, created_at ASC`, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		ORDER BY appointment_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListUpcoming(ctx context.Context, patientID uuid.UUID, now time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND appointment_time >= $2
		ORDER BY appointment_time ASC`, patientID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *repoPG) ListPast(ctx context.Context, patientID uuid.UUID, now time.Time, limit int) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND appointment_time < $2
		ORDER BY appointment_time DESC LIMIT $3`, patientID, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to workflow.Status, rec workflow.AuditRecord) error {
	recJSON, err := json.Marshal([]workflow.AuditRecord{rec})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment
		SET status = $3, audit = audit || $4::jsonb
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

func (r *repoPG) casMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM appointment WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return workflow.ErrResourceNotFound
	}
	return workflow.ErrConcurrentModification
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientPID, &a.PatientName, &a.DoctorID,
			&a.DoctorName, &a.Department, &a.AppointmentTime, &a.PaymentStatus, &a.Status,
			&a.Audit, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
