package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]*Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) error
	DeleteDoctor(ctx context.Context, id uuid.UUID) error

	CreateAccount(ctx context.Context, a *Account) error
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
}
