package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/classify"
)

// Patient maps to the patient table. PID is the human-readable hospital
// number handed to the patient at registration.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PID       string    `db:"pid" json:"pid"`
	Name      string    `db:"name" json:"name"`
	Contact   string    `db:"contact" json:"contact"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// VitalsLog maps to the vitals_log table. Alerts holds the anomaly findings
// computed at recording time so the history shows what the nurse saw.
type VitalsLog struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	PatientID  uuid.UUID       `db:"patient_id" json:"patient_id"`
	NurseID    string          `db:"nurse_id" json:"nurse_id"`
	NurseName  string          `db:"nurse_name" json:"nurse_name"`
	Vitals     classify.Vitals `db:"vitals" json:"vitals"`
	Alerts     []string        `db:"alerts" json:"alerts"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at"`
}
