package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPID(ctx context.Context, pid string) (*Patient, error)
	// GetByContact returns (nil, nil) when no patient has the contact.
	GetByContact(ctx context.Context, contact string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)

	AddVitals(ctx context.Context, v *VitalsLog) error
	ListVitals(ctx context.Context, patientID uuid.UUID) ([]*VitalsLog, error)
}
