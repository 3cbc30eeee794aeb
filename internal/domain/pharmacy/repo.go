package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateDrug(ctx context.Context, d *Drug) error
	GetDrug(ctx context.Context, id uuid.UUID) (*Drug, error)
	ListDrugs(ctx context.Context) ([]*Drug, error)
	DeleteDrug(ctx context.Context, id uuid.UUID) error

	// AdjustStock applies a delta to a drug's stock level and fails if the
	// result would go negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	CreatePrescription(ctx context.Context, p *Prescription) error
	GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListPending(ctx context.Context) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)

	// MarkDispensed moves Pending -> Dispensed with CAS.
	MarkDispensed(ctx context.Context, id uuid.UUID, dispensedBy string, dispensedAt time.Time) error
}
