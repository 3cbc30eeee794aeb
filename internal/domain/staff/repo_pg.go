package staff

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

const doctorCols = `id, name, department, consultation_fee, created_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Department, &d.ConsultationFee, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) CreateDoctor(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor (id, name, department, consultation_fee)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		d.ID, d.Name, d.Department, d.ConsultationFee).Scan(&d.CreatedAt)
}

func (r *repoPG) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *repoPG) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Department, &d.ConsultationFee, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, nil
}

func (r *repoPG) UpdateDoctor(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET name = $2, department = $3, consultation_fee = $4
		WHERE id = $1`,
		d.ID, d.Name, d.Department, d.ConsultationFee)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

func (r *repoPG) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrResourceNotFound
	}
	return nil
}

const accountCols = `id, username, name, role, password_hash, created_at`

func (r *repoPG) CreateAccount(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff_account (id, username, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		a.ID, a.Username, a.Name, a.Role, a.PasswordHash).Scan(&a.CreatedAt)
}

func (r *repoPG) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM staff_account WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) ListAccounts(ctx context.Context) ([]*Account, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+accountCols+` FROM staff_account ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, nil
}
