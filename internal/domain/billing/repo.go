package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error)
	ListUnpaidByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error)

	// MarkPaid flips one Unpaid entry to Paid. Paying an already-paid entry
	// is a CAS miss.
	MarkPaid(ctx context.Context, id uuid.UUID) error

	// MarkAllPaid settles every unpaid entry for a patient and returns how
	// many were settled.
	MarkAllPaid(ctx context.Context, patientID uuid.UUID) (int, error)
}
