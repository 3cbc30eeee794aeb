package lab

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

// Test is a catalog entry for an orderable investigation. Names are stored
// lowercase so catalog lookups from order names are case-insensitive.
type Test struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"test_name"`
	Department string    `db:"department" json:"department"`
	UnitPrice  float64   `db:"unit_price" json:"unit_price"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Order is one investigation ordered during a consultation. Patient fields
// are denormalized for the collection and workbench queues.
type Order struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	ConsultationID uuid.UUID       `db:"consultation_id" json:"consultation_id"`
	PatientID      uuid.UUID       `db:"patient_id" json:"patient_id"`
	PatientPID     string          `db:"patient_pid" json:"patient_pid"`
	PatientName    string          `db:"patient_name" json:"patient_name"`
	TestName       string          `db:"test_name" json:"test_name"`
	Status         workflow.Status `db:"status" json:"status"`
	Result         *string         `db:"result" json:"result,omitempty"`
	OrderedBy      string          `db:"ordered_by" json:"ordered_by"`
	OrderedAt      time.Time       `db:"ordered_at" json:"ordered_at"`
	CollectedBy    *string         `db:"collected_by" json:"collected_by,omitempty"`
	CollectedAt    *time.Time      `db:"collected_at" json:"collected_at,omitempty"`
	VerifiedBy     *string         `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt     *time.Time      `db:"verified_at" json:"verified_at,omitempty"`
}
