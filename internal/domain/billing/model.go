package billing

import (
	"time"

	"github.com/google/uuid"
)

// Billing entry statuses.
const (
	StatusUnpaid = "Unpaid"
	StatusPaid   = "Paid"
)

// Entry is one billable line item. Other services append entries when a
// chargeable event happens (consultation, dispense, verified lab result).
type Entry struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Description string     `db:"description" json:"item_description"`
	Quantity    int        `db:"quantity" json:"quantity"`
	UnitPrice   float64    `db:"unit_price" json:"unit_price"`
	TotalAmount float64    `db:"total_amount" json:"total_amount"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

// Summary is a patient's unpaid balance.
type Summary struct {
	PatientID uuid.UUID `json:"patient_id"`
	Unpaid    []*Entry  `json:"unpaid"`
	TotalDue  float64   `json:"total_due"`
}
