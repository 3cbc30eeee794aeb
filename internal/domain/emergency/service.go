package emergency

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

// PatientDirectory resolves patients for case registration. Satisfied by the
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

// Register opens an ER case. Triage scoring happens at registration and can
// degrade to rules, never blocking admission.
func (s *Service) Register(ctx context.Context, patientID uuid.UUID, registeredByID, registeredByName, preHospitalInfo, symptoms string, vitals classify.Vitals) (*Case, error) {
	if symptoms == "" {
		return nil, fmt.Errorf("presenting_symptoms is required")
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
	c := &Case{
		PatientID:          p.ID,
		PatientPID:         p.PID,
		PatientName:        p.Name,
		RegisteredByID:     registeredByID,
		RegisteredByName:   registeredByName,
		PreHospitalInfo:    preHospitalInfo,
		PresentingSymptoms: symptoms,
		InitialVitals:      vitals,
		TriageScore:        result.Score,
		TriageLevel:        result.Level,
		Status:             workflow.ERCaseGraph.Initial,
		CurrentLocation:    DefaultLocation,
		TreatmentOrders:    []TreatmentOrder{},
		CaseNotes:          []CaseNote{},
		Audit: []workflow.AuditRecord{
			{Actor: registeredByName, From: "", To: workflow.ERCaseGraph.Initial, At: now},
		},
		RegisteredAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Queue returns active cases sorted by triage score then arrival.
func (s *Service) Queue(ctx context.Context) ([]*Case, error) {
	items, err := s.repo.ListByStatus(ctx, workflow.ERCaseGraph.ActiveStatuses())
	if err != nil {
		return nil, err
	}
	workflow.SortQueue(items)
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]*Case, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *Service) ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Case, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Assign binds a doctor to a case. A Waiting case auto-transitions to
// Assigned Doctor; re-assigning an active case overwrites the doctor without
// touching the status.
func (s *Service) Assign(ctx context.Context, caseID, doctorID uuid.UUID, actor string) (*Case, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if workflow.ERCaseGraph.IsTerminal(c.Status) {
		return nil, workflow.ErrAlreadyClosed
	}
	d, err := s.doctors.Resolve(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}

	to := c.Status
	if c.Status == workflow.ERCaseGraph.Initial {
		to = workflow.ERCaseGraph.Assigned
	}
	rec := workflow.AuditRecord{Actor: actor, From: c.Status, To: to, At: time.Now().UTC()}
	if err := s.repo.Assign(ctx, caseID, c.Status, to, d.ID, d.Name, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caseID)
}

// Transition moves a case along the ER graph. Terminal statuses must go
// through Dispose so the disposition document is never missing.
func (s *Service) Transition(ctx context.Context, caseID uuid.UUID, to workflow.Status, actor string) (*Case, error) {
	if !workflow.ERCaseGraph.Contains(to) {
		return nil, fmt.Errorf("status %q: %w", to, workflow.ErrInvalidTransition)
	}
	if workflow.ERCaseGraph.IsTerminal(to) {
		return nil, fmt.Errorf("terminal status requires a disposition: %w", workflow.ErrInvalidTransition)
	}
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := workflow.ERCaseGraph.Step(c.Status, to); err != nil {
		if workflow.ERCaseGraph.IsTerminal(c.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	rec := workflow.AuditRecord{Actor: actor, From: c.Status, To: to, At: time.Now().UTC()}
	if err := s.repo.UpdateStatus(ctx, caseID, c.Status, to, rec, false); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caseID)
}

// SetLocation moves the patient within the department. Closed cases do not
// move.
func (s *Service) SetLocation(ctx context.Context, caseID uuid.UUID, location string) (*Case, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if workflow.ERCaseGraph.IsTerminal(c.Status) {
		return nil, workflow.ErrAlreadyClosed
	}
	if err := s.repo.UpdateLocation(ctx, caseID, location); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caseID)
}

func (s *Service) AddNote(ctx context.Context, caseID uuid.UUID, text, author string) (*Case, error) {
	if text == "" {
		return nil, fmt.Errorf("note text is required")
	}
	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	note := CaseNote{ID: uuid.New(), Text: text, NotedBy: author, NotedAt: time.Now().UTC()}
	if err := s.repo.AddNote(ctx, caseID, note); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caseID)
}

func (s *Service) AddOrder(ctx context.Context, caseID uuid.UUID, text, author string) (*Case, error) {
	if text == "" {
		return nil, fmt.Errorf("order text is required")
	}
	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	order := TreatmentOrder{ID: uuid.New(), Text: text, OrderedBy: author, OrderedAt: time.Now().UTC(), Status: "Ordered"}
	if err := s.repo.AddOrder(ctx, caseID, order); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caseID)
}

// Dispose closes a case with a final decision. Only the three terminal
// decisions are accepted; anything else is rejected outright rather than
// parked in Awaiting Disposition. Repeating the decision a case already
// closed with is a no-op success, so a retried disposition never errors.
func (s *Service) Dispose(ctx context.Context, caseID uuid.UUID, decision, notes, actor string) (*Case, error) {
	to := workflow.Status(decision)
	switch to {
	case workflow.ERDischarged, workflow.ERAdmitted, workflow.ERTransferred:
	default:
		return nil, fmt.Errorf("disposition %q: %w", decision, workflow.ErrInvalidTransition)
	}
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if workflow.ERCaseGraph.IsTerminal(c.Status) {
		if c.Status == to {
			return c, nil
		}
		return nil, workflow.ErrAlreadyClosed
	}
	if err := workflow.ERCaseGraph.Step(c.Status, to); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	disp := Disposition{Decision: decision, Notes: notes, DecidedBy: actor, DecidedAt: now}
	rec := workflow.AuditRecord{Actor: actor, From: c.Status, To: to, At: now}
	if err := s.repo.SetDisposition(ctx, caseID, c.Status, to, disp, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caseID)
}
