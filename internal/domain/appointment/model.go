package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

// Payment statuses for a booking.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

// Appointment is one scheduled visit. Doctor name and department are
// denormalized at booking time so the day queue renders without joins.
type Appointment struct {
	ID              uuid.UUID              `db:"id" json:"id"`
	PatientID       uuid.UUID              `db:"patient_id" json:"patient_id"`
	PatientPID      string                 `db:"patient_pid" json:"patient_pid"`
	PatientName     string                 `db:"patient_name" json:"patient_name"`
	DoctorID        uuid.UUID              `db:"doctor_id" json:"doctor_id"`
	DoctorName      string                 `db:"doctor_name" json:"doctor_name"`
	Department      string                 `db:"department" json:"department"`
	AppointmentTime time.Time              `db:"appointment_time" json:"appointment_time"`
	PaymentStatus   string                 `db:"payment_status" json:"payment_status"`
	Status          workflow.Status        `db:"status" json:"status"`
	Audit           []workflow.AuditRecord `db:"audit" json:"audit"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
}

// Slot is one bookable time offered by the scheduler.
type Slot struct {
	Time    time.Time `json:"time"`
	Display string    `json:"display"`
}

// PatientView splits a patient's bookings around now.
type PatientView struct {
	Upcoming []*Appointment `json:"upcoming"`
	Past     []*Appointment `json:"past"`
}
