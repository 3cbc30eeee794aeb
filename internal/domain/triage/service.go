package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

// PatientDirectory resolves patients for entry creation. Satisfied by the
// patient service.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DoctorDirectory resolves doctors for assignment. Satisfied by the staff
// service.
type DoctorDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*staff.Doctor, error)
}

type Service struct {
	repo       Repository
	patients   PatientDirectory
	doctors    DoctorDirectory
	classifier classify.Classifier
}

func NewService(repo Repository, patients PatientDirectory, doctors DoctorDirectory, classifier classify.Classifier) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors, classifier: classifier}
}

// Create registers a patient into the triage queue. The classifier scores
// the entry at creation time; classification can degrade but never blocks
// queue admission.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, nurseID, nurseName, symptoms, history string, vitals classify.Vitals) (*Entry, error) {
	if symptoms == "" {
		return nil, fmt.Errorf("symptoms is required")
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient: %w", workflow.ErrResourceNotFound)
	}

	result := s.classifier.Triage(ctx, symptoms, vitals)
	if err := workflow.ValidatePriority(result.Score); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e := &Entry{
		PatientID:      p.ID,
		PatientPID:     p.PID,
		PatientName:    p.Name,
		NurseID:        nurseID,
		NurseName:      nurseName,
		Symptoms:       symptoms,
		MedicalHistory: history,
		Vitals:         vitals,
		RiskScore:      result.Score,
		PriorityLevel:  result.Level,
		Status:         workflow.TriageGraph.Initial,
		Audit: []workflow.AuditRecord{
			{Actor: nurseName, From: "", To: workflow.TriageGraph.Initial, At: now},
		},
		RegisteredAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Queue returns the active triage queue sorted by risk score then arrival.
// Storage order is never trusted; the queue is re-sorted on every read.
func (s *Service) Queue(ctx context.Context) ([]*Entry, error) {
	items, err := s.repo.ListByStatus(ctx, workflow.TriageGraph.ActiveStatuses())
	if err != nil {
		return nil, err
	}
	workflow.SortQueue(items)
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// Assign binds a doctor to an entry. A Waiting entry auto-transitions to
// Assigned; an already-assigned active entry keeps its status and the new
// doctor overwrites the old one, recorded as a same-status audit entry.
func (s *Service) Assign(ctx context.Context, entryID, doctorID uuid.UUID, actor string) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if workflow.TriageGraph.IsTerminal(e.Status) {
		return nil, workflow.ErrAlreadyClosed
	}
	d, err := s.doctors.Resolve(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}

	to := e.Status
	if e.Status == workflow.TriageGraph.Initial {
		to = workflow.TriageGraph.Assigned
	}
	rec := workflow.AuditRecord{Actor: actor, From: e.Status, To: to, At: time.Now().UTC()}
	if err := s.repo.Assign(ctx, entryID, e.Status, to, d.ID, d.Name, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, entryID)
}

// Transition moves an entry to a new status along the triage graph.
func (s *Service) Transition(ctx context.Context, entryID uuid.UUID, to workflow.Status, actor string) (*Entry, error) {
	if !workflow.TriageGraph.Contains(to) {
		return nil, fmt.Errorf("status %q: %w", to, workflow.ErrInvalidTransition)
	}
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := workflow.TriageGraph.Step(e.Status, to); err != nil {
		if workflow.TriageGraph.IsTerminal(e.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	rec := workflow.AuditRecord{Actor: actor, From: e.Status, To: to, At: time.Now().UTC()}
	closed := workflow.TriageGraph.IsTerminal(to)
	if err := s.repo.UpdateStatus(ctx, entryID, e.Status, to, rec, closed); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, entryID)
}

// Complete closes an entry after its consultation is recorded.
func (s *Service) Complete(ctx context.Context, entryID uuid.UUID, actor string) error {
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if e.Status == workflow.TriageCompleted {
		return nil
	}
	// A Waiting or Assigned entry jumps through In-Progress first so the
	// timeline never skips a stage.
	if e.Status != workflow.TriageInProgress {
		if _, err := s.Transition(ctx, entryID, workflow.TriageInProgress, actor); err != nil {
			return err
		}
	}
	_, err = s.Transition(ctx, entryID, workflow.TriageCompleted, actor)
	return err
}
