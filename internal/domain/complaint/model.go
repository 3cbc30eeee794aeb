package complaint

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

// Complaint is one patient grievance ticket. The urgency band drives queue
// ordering; the updates log is append-only.
type Complaint struct {
	ID             uuid.UUID              `db:"id" json:"id"`
	PatientID      uuid.UUID              `db:"patient_id" json:"patient_id"`
	PatientName    string                 `db:"patient_name" json:"patient_name"`
	PatientContact string                 `db:"patient_contact" json:"patient_contact"`
	Text           string                 `db:"complaint_text" json:"complaint_text"`
	ChannelSource  string                 `db:"channel_source" json:"channel_source"`
	Category       string                 `db:"category" json:"category"`
	Urgency        string                 `db:"urgency" json:"urgency"`
	Status         workflow.Status        `db:"status" json:"status"`
	AssignedTo     *string                `db:"assigned_to" json:"assigned_to"`
	Updates        []Update               `db:"updates" json:"updates"`
	Audit          []workflow.AuditRecord `db:"audit" json:"audit"`
	CreatedBy      string                 `db:"created_by" json:"created_by"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
	ClosedAt       *time.Time             `db:"closed_at" json:"closed_at"`
}

// Update is one entry in a ticket's resolution log.
type Update struct {
	UserName  string    `json:"user_name"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Complaint) PriorityScore() int { return classify.UrgencyRank(c.Urgency) }
func (c *Complaint) ArrivedAt() time.Time { return c.CreatedAt }
