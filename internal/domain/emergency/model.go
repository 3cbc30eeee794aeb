package emergency

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

// DefaultLocation is where every new ER case starts.
const DefaultLocation = "ER Waiting Area"

// Case is one emergency department case. Patient and doctor names are
// denormalized so the live queue renders without joins. Notes, orders and
// the disposition are embedded documents, kept append-only by the service.
type Case struct {
	ID                 uuid.UUID              `db:"id" json:"id"`
	PatientID          uuid.UUID              `db:"patient_id" json:"patient_id"`
	PatientPID         string                 `db:"patient_pid" json:"patient_pid"`
	PatientName        string                 `db:"patient_name" json:"patient_name"`
	RegisteredByID     string                 `db:"registered_by_id" json:"registered_by_id"`
	RegisteredByName   string                 `db:"registered_by_name" json:"registered_by_name"`
	PreHospitalInfo    string                 `db:"pre_hospital_info" json:"pre_hospital_info"`
	PresentingSymptoms string                 `db:"presenting_symptoms" json:"presenting_symptoms"`
	InitialVitals      classify.Vitals        `db:"initial_vitals" json:"initial_vitals"`
	TriageScore        int                    `db:"triage_score" json:"triage_score"`
	TriageLevel        string                 `db:"triage_level" json:"triage_level"`
	Status             workflow.Status        `db:"status" json:"status"`
	CurrentLocation    string                 `db:"current_location" json:"current_location"`
	AssignedDoctorID   *uuid.UUID             `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	AssignedDoctorName *string                `db:"assigned_doctor_name" json:"assigned_doctor_name,omitempty"`
	TreatmentOrders    []TreatmentOrder       `db:"treatment_orders" json:"treatment_orders"`
	CaseNotes          []CaseNote             `db:"case_notes" json:"case_notes"`
	Disposition        *Disposition           `db:"disposition" json:"disposition,omitempty"`
	Audit              []workflow.AuditRecord `db:"audit" json:"audit"`
	RegisteredAt       time.Time              `db:"registered_at" json:"registered_at"`
	ClosedAt           *time.Time             `db:"closed_at" json:"closed_at,omitempty"`
}

func (c *Case) PriorityScore() int { return c.TriageScore }
func (c *Case) ArrivedAt() time.Time { return c.RegisteredAt }

// TreatmentOrder is one clinical order placed on a case.
type TreatmentOrder struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"order_text"`
	OrderedBy string    `json:"ordered_by"`
	OrderedAt time.Time `json:"ordered_at"`
	Status    string    `json:"status"`
}

// CaseNote is one clinical note on a case.
type CaseNote struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"note_text"`
	NotedBy string    `json:"noted_by"`
	NotedAt time.Time `json:"noted_at"`
}

// Disposition records the final decision for a case. Decision is always one
// of the terminal statuses.
type Disposition struct {
	Decision  string    `json:"decision"`
	Notes     string    `json:"notes"`
	DecidedBy string    `json:"decided_by"`
	DecidedAt time.Time `json:"decided_at"`
}
