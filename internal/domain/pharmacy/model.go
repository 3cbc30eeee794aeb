package pharmacy

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

// Drug is one formulary (inventory) item. Names are stored lowercase for
// case-insensitive matching against prescription text.
type Drug struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Name              string    `db:"name" json:"drug_name"`
	BrandName         string    `db:"brand_name" json:"brand_name"`
	DosageForm        string    `db:"dosage_form" json:"dosage_form"`
	StockLevel        int       `db:"stock_level" json:"stock_level"`
	UnitPrice         float64   `db:"unit_price" json:"unit_price"`
	LowStockThreshold int       `db:"low_stock_threshold" json:"low_stock_threshold"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// LowStock reports whether the drug needs a reorder.
func (d *Drug) LowStock() bool {
	return d.StockLevel <= d.LowStockThreshold
}

// Prescription is one medication line written during a consultation.
type Prescription struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	ConsultationID uuid.UUID       `db:"consultation_id" json:"consultation_id"`
	PatientID      uuid.UUID       `db:"patient_id" json:"patient_id"`
	PatientPID     string          `db:"patient_pid" json:"patient_pid"`
	PatientName    string          `db:"patient_name" json:"patient_name"`
	DrugName       string          `db:"drug_name" json:"name"`
	Dosage         string          `db:"dosage" json:"dosage"`
	Instructions   string          `db:"instructions" json:"instructions"`
	Status         workflow.Status `db:"status" json:"status"`
	PrescribedBy   string          `db:"prescribed_by" json:"prescribed_by"`
	PrescribedAt   time.Time       `db:"prescribed_at" json:"prescribed_at"`
	DispensedBy    *string         `db:"dispensed_by" json:"dispensed_by,omitempty"`
	DispensedAt    *time.Time      `db:"dispensed_at" json:"dispensed_at,omitempty"`
}
