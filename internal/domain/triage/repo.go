package triage

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByStatus(ctx context.Context, statuses []workflow.Status) ([]*Entry, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error)

	// UpdateStatus applies a transition with compare-and-set on the expected
	// prior status, appending rec to the audit timeline. closed stamps
	// closed_at (once) for terminal transitions. A CAS miss on an existing
	// row is ErrConcurrentModification.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to workflow.Status, rec workflow.AuditRecord, closed bool) error

	// Assign sets the assigned doctor alongside a status CAS, in one UPDATE.
	Assign(ctx context.Context, id uuid.UUID, from, to workflow.Status, doctorID uuid.UUID, doctorName string, rec workflow.AuditRecord) error
}
