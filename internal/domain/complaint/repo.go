package complaint

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	ListOpen(ctx context.Context, statuses []workflow.Status) ([]*Complaint, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Complaint, int, error)
	AddUpdate(ctx context.Context, id uuid.UUID, upd Update) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to workflow.Status, rec workflow.AuditRecord, closed bool) error
	Assign(ctx context.Context, id uuid.UUID, from, to workflow.Status, assignee string, rec workflow.AuditRecord) error
}
