package lab

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

type Repository interface {
	CreateTest(ctx context.Context, t *Test) error
	GetTestByName(ctx context.Context, name string) (*Test, error)
	ListTests(ctx context.Context) ([]*Test, error)
	DeleteTest(ctx context.Context, id uuid.UUID) error

	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrdersByStatus(ctx context.Context, statuses []workflow.Status) ([]*Order, error)
	ListOrdersByPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error)

	// MarkCollected moves Pending Sample -> Sample Collected with CAS.
	MarkCollected(ctx context.Context, id uuid.UUID, collectedBy string, collectedAt time.Time) error

	// MarkVerified stores the result and moves Sample Collected -> Result
	// Verified with CAS.
	MarkVerified(ctx context.Context, id uuid.UUID, result, verifiedBy string, verifiedAt time.Time) error
}
