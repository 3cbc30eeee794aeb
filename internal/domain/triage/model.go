package triage

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

// Entry is one patient in the triage queue. Patient and doctor names are
// denormalized so queue views never need a join.
type Entry struct {
	ID                 uuid.UUID              `db:"id" json:"id"`
	PatientID          uuid.UUID              `db:"patient_id" json:"patient_id"`
	PatientPID         string                 `db:"patient_pid" json:"patient_pid"`
	PatientName        string                 `db:"patient_name" json:"patient_name"`
	NurseID            string                 `db:"nurse_id" json:"nurse_id"`
	NurseName          string                 `db:"nurse_name" json:"nurse_name"`
	Symptoms           string                 `db:"symptoms" json:"symptoms"`
	MedicalHistory     string                 `db:"medical_history" json:"medical_history"`
	Vitals             classify.Vitals        `db:"vitals" json:"vitals"`
	RiskScore          int                    `db:"risk_score" json:"risk_score"`
	PriorityLevel      string                 `db:"priority_level" json:"priority_level"`
	Status             workflow.Status        `db:"status" json:"status"`
	AssignedDoctorID   *uuid.UUID             `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	AssignedDoctorName *string                `db:"assigned_doctor_name" json:"assigned_doctor_name,omitempty"`
	Audit              []workflow.AuditRecord `db:"audit" json:"audit"`
	RegisteredAt       time.Time              `db:"registered_at" json:"registered_at"`
	ClosedAt           *time.Time             `db:"closed_at" json:"closed_at,omitempty"`
}

func (e *Entry) PriorityScore() int { return e.RiskScore }
func (e *Entry) ArrivedAt() time.Time { return e.RegisteredAt }
