package pharmacy

import (
	"context"
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

const drugCols = `id, name, brand_name, dosage_form, stock_level, unit_price, low_stock_threshold, created_at`

func (r *repoPG) CreateDrug(ctx context.Context, d *Drug) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO formulary (id, name, brand_name, dosage_form, stock_level, unit_price, low_stock_threshold)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		RETURNING name, created_at`,
		d.ID, d.Name, d.BrandName, d.DosageForm, d.StockLevel, d.UnitPrice, d.LowStockThreshold).
		Scan(&d.Name, &d.CreatedAt)
}

func (r *repoPG) GetDrug(ctx context.Context, id uuid.UUID) (*Drug, error) {
	var d Drug
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+drugCols+` FROM formulary WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.BrandName, &d.DosageForm, &d.StockLevel, &d.UnitPrice,
			&d.LowStockThreshold, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) ListDrugs(ctx context.Context) ([]*Drug, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+drugCols+` FROM formulary ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Drug
	for rows.Next() {
		var d Drug
		if err := rows.Scan(&d.ID, &d.Name, &d.BrandName, &d.DosageForm, &d.StockLevel,
			&d.UnitPrice, &d.LowStockThreshold, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteDrug(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM formulary WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

func (r *repoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE formulary SET stock_level = stock_level + $2
		WHERE id = $1 AND stock_level + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM formulary WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return workflow.ErrResourceNotFound
		}
		return fmt.Errorf("insufficient stock")
	}
	return nil
}

const rxCols = `id, consultation_id, patient_id, patient_pid, patient_name, drug_name, dosage,
	instructions, status, prescribed_by, prescribed_at, dispensed_by, dispensed_at`

func (r *repoPG) CreatePrescription(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (id, consultation_id, patient_id, patient_pid, patient_name,
			drug_name, dosage, instructions, status, prescribed_by, prescribed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.ConsultationID, p.PatientID, p.PatientPID, p.PatientName,
		p.DrugName, p.Dosage, p.Instructions, p.Status, p.PrescribedBy, p.PrescribedAt)
	return err
}

func (r *repoPG) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	var p Prescription
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+rxCols+` FROM prescription WHERE id = $1`, id).
		Scan(&p.ID, &p.ConsultationID, &p.PatientID, &p.PatientPID, &p.PatientName, &p.DrugName,
			&p.Dosage, &p.Instructions, &p.Status, &p.PrescribedBy, &p.PrescribedAt,
			&p.DispensedBy, &p.DispensedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) ListPending(ctx context.Context) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rxCols+` FROM prescription
		WHERE status = $1 ORDER BY prescribed_at ASC`, workflow.RxPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rxCols+` FROM prescription
		WHERE patient_id = $1 ORDER BY prescribed_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

func (r *repoPG) MarkDispensed(ctx context.Context, id uuid.UUID, dispensedBy string, dispensedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription
		SET status = $2, dispensed_by = $3, dispensed_at = $4
		WHERE id = $1 AND status = $5`,
		id, workflow.RxDispensed, dispensedBy, dispensedAt, workflow.RxPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM prescription WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return workflow.ErrResourceNotFound
		}
		return workflow.ErrConcurrentModification
	}
	return nil
}

func collectPrescriptions(rows pgx.Rows) ([]*Prescription, error) {
	var items []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.ConsultationID, &p.PatientID, &p.PatientPID, &p.PatientName,
			&p.DrugName, &p.Dosage, &p.Instructions, &p.Status, &p.PrescribedBy, &p.PrescribedAt,
			&p.DispensedBy, &p.DispensedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}
