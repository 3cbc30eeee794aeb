package consultation

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

const consultationCols = `id, triage_id, patient_id, patient_pid, patient_name, doctor_id, doctor_name,
	notes, consultation_at`

func (r *repoPG) Create(ctx context.Context, c *Consultation) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consultation (id, triage_id, patient_id, patient_pid, patient_name,
			doctor_id, doctor_name, notes, consultation_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.TriageID, c.PatientID, c.PatientPID, c.PatientName,
		c.DoctorID, c.DoctorName, c.Notes, c.ConsultationAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	var c Consultation
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+consultationCols+` FROM consultation WHERE id = $1`, id).
		Scan(&c.ID, &c.TriageID, &c.PatientID, &c.PatientPID, &c.PatientName,
			&c.DoctorID, &c.DoctorName, &c.Notes, &c.ConsultationAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+` FROM consultation
		WHERE patient_id = $1 ORDER BY consultation_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConsultations(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Consultation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultation`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+` FROM consultation
		ORDER BY consultation_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectConsultations(rows)
	return items, total, err
}

func collectConsultations(rows pgx.Rows) ([]*Consultation, error) {
	var items []*Consultation
	for rows.Next() {
		var c Consultation
		if err := rows.Scan(&c.ID, &c.TriageID, &c.PatientID, &c.PatientPID, &c.PatientName,
			&c.DoctorID, &c.DoctorName, &c.Notes, &c.ConsultationAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
