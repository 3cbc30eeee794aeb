package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

const patientCols = `id, pid, name, contact, created_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PID, &p.Name, &p.Contact, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	// PID numbers come from a sequence starting at 10001 so they are unique
	// across concurrent registrations.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, pid, name, contact)
		VALUES ($1, 'PID-' || nextval('patient_pid_seq'), $2, $3)
		RETURNING pid, created_at`,
		p.ID, p.Name, p.Contact).Scan(&p.PID, &p.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByPID(ctx context.Context, pid string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE pid = $1`, pid))
}

func (r *repoPG) GetByContact(ctx context.Context, contact string) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE contact = $1`, contact))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE name ILIKE $1 OR pid ILIKE $1 OR contact ILIKE $1`,
		pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE name ILIKE $1 OR pid ILIKE $1 OR contact ILIKE $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) AddVitals(ctx context.Context, v *VitalsLog) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vitals_log (id, patient_id, nurse_id, nurse_name, vitals, alerts, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		v.ID, v.PatientID, v.NurseID, v.NurseName, v.Vitals, v.Alerts, v.RecordedAt)
	return err
}

func (r *repoPG) ListVitals(ctx context.Context, patientID uuid.UUID) ([]*VitalsLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, nurse_id, nurse_name, vitals, alerts, recorded_at
		FROM vitals_log WHERE patient_id = $1 ORDER BY recorded_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*VitalsLog
	for rows.Next() {
		var v VitalsLog
		if err := rows.Scan(&v.ID, &v.PatientID, &v.NurseID, &v.NurseName, &v.Vitals, &v.Alerts, &v.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, nil
}
