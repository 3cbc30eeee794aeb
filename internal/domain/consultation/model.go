package consultation

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/lab"
	"github.com/hms/hms/internal/domain/pharmacy"
)

// Consultation is the doctor's record for one triage encounter. The written
// prescriptions and ordered investigations live in the pharmacy and lab
// tables, keyed back to this record.
type Consultation struct {
	ID             uuid.UUID `db:"id" json:"id"`
	TriageID       uuid.UUID `db:"triage_id" json:"triage_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientPID     string    `db:"patient_pid" json:"patient_pid"`
	PatientName    string    `db:"patient_name" json:"patient_name"`
	DoctorID       uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName     string    `db:"doctor_name" json:"doctor_name"`
	Notes          string    `db:"notes" json:"notes"`
	ConsultationAt time.Time `db:"consultation_at" json:"consultation_at"`
}

// RxLine is one medication line on the consultation form.
type RxLine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions"`
}

// Result is a finalized consultation with everything it spawned.
type Result struct {
	Consultation  *Consultation            `json:"consultation"`
	Prescriptions []*pharmacy.Prescription `json:"prescriptions"`
	LabOrders     []*lab.Order             `json:"lab_orders"`
}
