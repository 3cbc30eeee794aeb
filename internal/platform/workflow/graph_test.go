package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriageGraphForwardPath(t *testing.T) {
	require.NoError(t, TriageGraph.Step(TriageWaiting, TriageAssigned))
	require.NoError(t, TriageGraph.Step(TriageAssigned, TriageInProgress))
	require.NoError(t, TriageGraph.Step(TriageInProgress, TriageCompleted))
}

func TestTriageGraphSkipAssignment(t *testing.T) {
	assert.NoError(t, TriageGraph.Step(TriageWaiting, TriageInProgress))
}

func TestTriageGraphRejectsBackward(t *testing.T) {
	assert.ErrorIs(t, TriageGraph.Step(TriageAssigned, TriageWaiting), ErrInvalidTransition)
	assert.ErrorIs(t, TriageGraph.Step(TriageInProgress, TriageAssigned), ErrInvalidTransition)
}

func TestTriageGraphCompletedIsTerminal(t *testing.T) {
	assert.True(t, TriageGraph.IsTerminal(TriageCompleted))
	assert.ErrorIs(t, TriageGraph.Step(TriageCompleted, TriageInProgress), ErrInvalidTransition)
	assert.ErrorIs(t, TriageGraph.Step(TriageCompleted, TriageWaiting), ErrInvalidTransition)
}

func TestSameStatusIsNoOp(t *testing.T) {
	assert.NoError(t, TriageGraph.Step(TriageAssigned, TriageAssigned))
	// Same-status retries succeed even on a terminal status.
	assert.NoError(t, TriageGraph.Step(TriageCompleted, TriageCompleted))
}

func TestTriageGraphRejectsSkipToCompleted(t *testing.T) {
	assert.ErrorIs(t, TriageGraph.Step(TriageWaiting, TriageCompleted), ErrInvalidTransition)
}

func TestERCaseGraphTerminals(t *testing.T) {
	for _, s := range []Status{ERDischarged, ERAdmitted, ERTransferred} {
		assert.True(t, ERCaseGraph.IsTerminal(s), "expected %s to be terminal", s)
	}
	for _, s := range []Status{ERWaiting, ERAssignedDoctor, ERInTreatment, ERObservation, ERAwaitingDisposition} {
		assert.False(t, ERCaseGraph.IsTerminal(s), "expected %s to be active", s)
	}
}

func TestERCaseDirectDisposition(t *testing.T) {
	// Any non-terminal ER status may resolve straight to a disposition.
	for _, from := range ERCaseGraph.ActiveStatuses() {
		for _, to := range []Status{ERDischarged, ERAdmitted, ERTransferred} {
			assert.NoError(t, ERCaseGraph.Step(from, to), "%s -> %s", from, to)
		}
	}
}

func TestERCaseGraphNoDispositionReversal(t *testing.T) {
	assert.ErrorIs(t, ERCaseGraph.Step(ERDischarged, ERWaiting), ErrInvalidTransition)
	assert.ErrorIs(t, ERCaseGraph.Step(ERAdmitted, ERAwaitingDisposition), ErrInvalidTransition)
}

func TestERCaseGraphForwardPath(t *testing.T) {
	path := []Status{ERWaiting, ERAssignedDoctor, ERInTreatment, ERObservation, ERAwaitingDisposition, ERDischarged}
	for i := 0; i < len(path)-1; i++ {
		require.NoError(t, ERCaseGraph.Step(path[i], path[i+1]))
	}
}

func TestLabOrderGraph(t *testing.T) {
	require.NoError(t, LabOrderGraph.Step(LabPendingSample, LabSampleCollected))
	require.NoError(t, LabOrderGraph.Step(LabSampleCollected, LabResultVerified))
	assert.ErrorIs(t, LabOrderGraph.Step(LabPendingSample, LabResultVerified), ErrInvalidTransition)
	assert.True(t, LabOrderGraph.IsTerminal(LabResultVerified))
}

func TestPrescriptionGraph(t *testing.T) {
	require.NoError(t, PrescriptionGraph.Step(RxPending, RxDispensed))
	assert.ErrorIs(t, PrescriptionGraph.Step(RxDispensed, RxPending), ErrInvalidTransition)
}

func TestComplaintGraph(t *testing.T) {
	require.NoError(t, ComplaintGraph.Step(ComplaintNew, ComplaintAssigned))
	require.NoError(t, ComplaintGraph.Step(ComplaintAssigned, ComplaintInProgress))
	require.NoError(t, ComplaintGraph.Step(ComplaintInProgress, ComplaintResolved))
	require.NoError(t, ComplaintGraph.Step(ComplaintResolved, ComplaintClosed))
	assert.ErrorIs(t, ComplaintGraph.Step(ComplaintClosed, ComplaintNew), ErrInvalidTransition)
}

func TestGraphContains(t *testing.T) {
	assert.True(t, TriageGraph.Contains(TriageCompleted))
	assert.True(t, ERCaseGraph.Contains(ERTransferred))
	assert.False(t, TriageGraph.Contains(Status("Bogus")))
}

func TestActiveStatuses(t *testing.T) {
	assert.Equal(t, []Status{TriageWaiting, TriageAssigned, TriageInProgress}, TriageGraph.ActiveStatuses())
	assert.Len(t, ERCaseGraph.ActiveStatuses(), 5)
}
