// Package classify scores clinical input: ESI risk levels for incoming
// triage entries, urgency and category for complaint tickets, and drug
// interaction checks for prescriptions. A remote model gateway does the
// scoring when reachable; deterministic rules take over when it is not,
// so callers always get a usable answer and never an error.
package classify

import "context"

// Vitals is the subset of a vitals reading that influences scoring.
type Vitals struct {
	Temperature float64 `json:"temperature,omitempty"`
	HeartRate   int     `json:"heart_rate,omitempty"`
	BPSystolic  int     `json:"bp_systolic,omitempty"`
	BPDiastolic int     `json:"bp_diastolic,omitempty"`
	SpO2        int     `json:"spo2,omitempty"`
}

// TriageResult is an ESI score with its display level.
type TriageResult struct {
	Score int    `json:"risk_score"`
	Level string `json:"priority_level"`
}

// ComplaintResult categorizes a complaint ticket.
type ComplaintResult struct {
	Category string `json:"category"`
	Urgency  string `json:"urgency"`
}

// InteractionResult lists drug-drug interaction alerts for a medication set.
type InteractionResult struct {
	Alerts []string `json:"alerts"`
	Severe bool     `json:"severe"`
}

// Classifier scores clinical input. Implementations must not return errors;
// when a backend is unavailable they degrade to rule-based results so entry
// creation is never blocked on classification.
type Classifier interface {
	Triage(ctx context.Context, symptoms string, vitals Vitals) TriageResult
	Complaint(ctx context.Context, text string) ComplaintResult
	Interactions(ctx context.Context, medications []string) InteractionResult
}

// TriageLevels maps ESI scores to their display labels.
var TriageLevels = map[int]string{
	1: "Level 1: Resuscitation (Immediate)",
	2: "Level 2: Emergency (1-14 mins)",
	3: "Level 3: Urgent (15-60 mins)",
	4: "Level 4: Less Urgent (61-120 mins)",
	5: "Level 5: Non-Urgent (121+ mins)",
}

// Complaint urgency bands, ordered most to least urgent.
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

// ComplaintCategories is the closed set of ticket categories.
var ComplaintCategories = []string{
	"Billing & Finance",
	"Staff Behavior",
	"Medical Care",
	"Facility & Cleanliness",
	"Scheduling",
	"General Inquiry",
}

// UrgencyRank orders complaint urgencies for queue sorting. Lower is more
// urgent, mirroring ESI scores.
func UrgencyRank(urgency string) int {
	switch urgency {
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}
