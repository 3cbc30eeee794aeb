package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListQueue(ctx context.Context, statuses []workflow.Status) ([]*Appointment, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListUpcoming(ctx context.Context, patientID uuid.UUID, now time.Time) ([]*Appointment, error)
	ListPast(ctx context.Context, patientID uuid.UUID, now time.Time, limit int) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to workflow.Status, rec workflow.AuditRecord) error
}
