package workflow

import (
	"time"
)

// Status is a lifecycle state of a queueable entry.
type Status string

// Triage entry statuses.
const (
	TriageWaiting    Status = "Waiting"
	TriageAssigned   Status = "Assigned"
	TriageInProgress Status = "In-Progress"
	TriageCompleted  Status = "Completed"
)

// ER case statuses.
const (
	ERWaiting             Status = "Waiting"
	ERAssignedDoctor      Status = "Assigned Doctor"
	ERInTreatment         Status = "In-Treatment"
	ERObservation         Status = "Observation"
	ERAwaitingDisposition Status = "Awaiting Disposition"
	ERDischarged          Status = "Discharged"
	ERAdmitted            Status = "Admitted"
	ERTransferred         Status = "Transferred"
)

// Lab order statuses.
const (
	LabPendingSample   Status = "Pending Sample"
	LabSampleCollected Status = "Sample Collected"
	LabResultVerified  Status = "Result Verified"
)

// Prescription statuses.
const (
	RxPending   Status = "Pending"
	RxDispensed Status = "Dispensed"
)

// Complaint ticket statuses.
const (
	ComplaintNew        Status = "New"
	ComplaintAssigned   Status = "Assigned"
	ComplaintInProgress Status = "In Progress"
	ComplaintResolved   Status = "Resolved"
	ComplaintClosed     Status = "Closed"
)

// Appointment statuses.
const (
	ApptPending   Status = "Pending"
	ApptCheckedIn Status = "CheckedIn"
	ApptCompleted Status = "Completed"
)

// AuditRecord is one element of an entry's append-only transition timeline.
type AuditRecord struct {
	Actor string    `json:"actor"`
	From  Status    `json:"from"`
	To    Status    `json:"to"`
	At    time.Time `json:"at"`
}

// Graph is the transition table for one entry kind. Statuses not listed as a
// key in Edges have no outgoing transitions (terminal).
type Graph struct {
	Initial  Status
	Edges    map[Status][]Status
	Assigned Status // status reached when a doctor is bound to a Waiting entry
	active   []Status
}

// Step validates a transition from one status to another. A transition to the
// current status is a no-op success, supporting retries from unreliable
// callers. Terminal statuses have no outgoing edges, so any attempt to leave
// one fails with ErrInvalidTransition.
func (g *Graph) Step(from, to Status) error {
	if from == to {
		return nil
	}
	for _, next := range g.Edges[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// IsTerminal reports whether a status has no outgoing transitions.
func (g *Graph) IsTerminal(s Status) bool {
	return len(g.Edges[s]) == 0
}

// Contains reports whether s is a status of this graph.
func (g *Graph) Contains(s Status) bool {
	if s == g.Initial {
		return true
	}
	if _, ok := g.Edges[s]; ok {
		return true
	}
	for _, targets := range g.Edges {
		for _, t := range targets {
			if t == s {
				return true
			}
		}
	}
	return false
}

// ActiveStatuses returns the non-terminal statuses of the graph, the set an
// active queue view filters on. The slice is shared; callers must not mutate.
func (g *Graph) ActiveStatuses() []Status {
	return g.active
}

func newGraph(initial Status, assigned Status, edges map[Status][]Status, active []Status) *Graph {
	return &Graph{Initial: initial, Assigned: assigned, Edges: edges, active: active}
}

// TriageGraph: Waiting -> Assigned -> In-Progress -> Completed, with a direct
// Waiting -> In-Progress edge for walk-up consultations.
var TriageGraph = newGraph(TriageWaiting, TriageAssigned,
	map[Status][]Status{
		TriageWaiting:    {TriageAssigned, TriageInProgress},
		TriageAssigned:   {TriageInProgress},
		TriageInProgress: {TriageCompleted},
	},
	[]Status{TriageWaiting, TriageAssigned, TriageInProgress},
)

// ERCaseGraph has three terminal disposition states. Every non-terminal
// status may resolve directly to a terminal disposition.
var ERCaseGraph = newGraph(ERWaiting, ERAssignedDoctor,
	map[Status][]Status{
		ERWaiting:             {ERAssignedDoctor, ERDischarged, ERAdmitted, ERTransferred},
		ERAssignedDoctor:      {ERInTreatment, ERDischarged, ERAdmitted, ERTransferred},
		ERInTreatment:         {ERObservation, ERAwaitingDisposition, ERDischarged, ERAdmitted, ERTransferred},
		ERObservation:         {ERAwaitingDisposition, ERDischarged, ERAdmitted, ERTransferred},
		ERAwaitingDisposition: {ERDischarged, ERAdmitted, ERTransferred},
	},
	[]Status{ERWaiting, ERAssignedDoctor, ERInTreatment, ERObservation, ERAwaitingDisposition},
)

// LabOrderGraph: Pending Sample -> Sample Collected -> Result Verified.
var LabOrderGraph = newGraph(LabPendingSample, "",
	map[Status][]Status{
		LabPendingSample:   {LabSampleCollected},
		LabSampleCollected: {LabResultVerified},
	},
	[]Status{LabPendingSample, LabSampleCollected},
)

// PrescriptionGraph: Pending -> Dispensed.
var PrescriptionGraph = newGraph(RxPending, "",
	map[Status][]Status{
		RxPending: {RxDispensed},
	},
	[]Status{RxPending},
)

// ComplaintGraph: New -> Assigned -> In Progress -> Resolved -> Closed.
var ComplaintGraph = newGraph(ComplaintNew, ComplaintAssigned,
	map[Status][]Status{
		ComplaintNew:        {ComplaintAssigned, ComplaintInProgress},
		ComplaintAssigned:   {ComplaintInProgress, ComplaintResolved},
		ComplaintInProgress: {ComplaintResolved, ComplaintClosed},
		ComplaintResolved:   {ComplaintClosed},
	},
	[]Status{ComplaintNew, ComplaintAssigned, ComplaintInProgress, ComplaintResolved},
)

// AppointmentGraph: Pending -> CheckedIn -> Completed.
var AppointmentGraph = newGraph(ApptPending, "",
	map[Status][]Status{
		ApptPending:   {ApptCheckedIn},
		ApptCheckedIn: {ApptCompleted},
	},
	[]Status{ApptPending, ApptCheckedIn},
)
