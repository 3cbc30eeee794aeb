package emergency

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

type Repository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	ListByStatus(ctx context.Context, statuses []workflow.Status) ([]*Case, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Case, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Case, error)

	// UpdateStatus applies a transition with compare-and-set on the expected
	// prior status. A CAS miss on an existing row is ErrConcurrentModification.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to workflow.Status, rec workflow.AuditRecord, closed bool) error

	// Assign sets the assigned doctor alongside a status CAS.
	Assign(ctx context.Context, id uuid.UUID, from, to workflow.Status, doctorID uuid.UUID, doctorName string, rec workflow.AuditRecord) error

	UpdateLocation(ctx context.Context, id uuid.UUID, location string) error
	AddNote(ctx context.Context, id uuid.UUID, note CaseNote) error
	AddOrder(ctx context.Context, id uuid.UUID, order TreatmentOrder) error

	// SetDisposition stores the disposition document with the terminal status
	// CAS and stamps closed_at once.
	SetDisposition(ctx context.Context, id uuid.UUID, from, to workflow.Status, disp Disposition, rec workflow.AuditRecord) error
}
