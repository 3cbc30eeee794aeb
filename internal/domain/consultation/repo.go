package consultation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Consultation, int, error)
}
