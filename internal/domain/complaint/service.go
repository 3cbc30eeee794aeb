package complaint

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

// PatientDirectory resolves the patient a ticket is filed for. Satisfied by
// the patient service.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	repo       Repository
	patients   PatientDirectory
	classifier classify.Classifier
}

func NewService(repo Repository, patients PatientDirectory, classifier classify.Classifier) *Service {
	return &Service{repo: repo, patients: patients, classifier: classifier}
}

// Create files a new ticket. The classifier assigns category and urgency at
// creation time; classification can degrade but never blocks intake.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, text, channelSource, createdBy string) (*Complaint, error) {
	if text == "" {
		return nil, fmt.Errorf("complaint_text is required")
	}
	if channelSource == "" {
		return nil, fmt.Errorf("channel_source is required")
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient: %w", workflow.ErrResourceNotFound)
	}

	result := s.classifier.Complaint(ctx, text)

	now := time.Now().UTC()
	c := &Complaint{
		PatientID:      p.ID,
		PatientName:    p.Name,
		PatientContact: p.Contact,
		Text:           text,
		ChannelSource:  channelSource,
		Category:       result.Category,
		Urgency:        result.Urgency,
		Status:         workflow.ComplaintGraph.Initial,
		Updates:        []Update{},
		Audit: []workflow.AuditRecord{
			{Actor: createdBy, From: "", To: workflow.ComplaintGraph.Initial, At: now},
		},
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Queue returns open tickets, most urgent first, oldest first within a band.
func (s *Service) Queue(ctx context.Context) ([]*Complaint, error) {
	items, err := s.repo.ListOpen(ctx, workflow.ComplaintGraph.ActiveStatuses())
	if err != nil {
		return nil, err
	}
	workflow.SortQueue(items)
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Complaint, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]*Complaint, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// AddUpdate appends a comment to the ticket's resolution log. The log is
// append-only; closed tickets no longer take comments.
func (s *Service) AddUpdate(ctx context.Context, id uuid.UUID, actor, comment string) (*Complaint, error) {
	if comment == "" {
		return nil, fmt.Errorf("comment is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workflow.ComplaintGraph.IsTerminal(c.Status) {
		return nil, workflow.ErrAlreadyClosed
	}
	upd := Update{UserName: actor, Comment: comment, Timestamp: time.Now().UTC()}
	if err := s.repo.AddUpdate(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Assign hands a ticket to a staff member. A New ticket auto-transitions to
// Assigned; an active ticket keeps its status and the new assignee overwrites
// the old one.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, assignee, actor string) (*Complaint, error) {
	if assignee == "" {
		return nil, fmt.Errorf("assigned_to is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workflow.ComplaintGraph.IsTerminal(c.Status) {
		return nil, workflow.ErrAlreadyClosed
	}

	to := c.Status
	if c.Status == workflow.ComplaintGraph.Initial {
		to = workflow.ComplaintGraph.Assigned
	}
	rec := workflow.AuditRecord{Actor: actor, From: c.Status, To: to, At: time.Now().UTC()}
	if err := s.repo.Assign(ctx, id, c.Status, to, assignee, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Transition moves a ticket along the complaint graph.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to workflow.Status, actor string) (*Complaint, error) {
	if !workflow.ComplaintGraph.Contains(to) {
		return nil, fmt.Errorf("status %q: %w", to, workflow.ErrInvalidTransition)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ComplaintGraph.Step(c.Status, to); err != nil {
		if workflow.ComplaintGraph.IsTerminal(c.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	rec := workflow.AuditRecord{Actor: actor, From: c.Status, To: to, At: time.Now().UTC()}
	closed := workflow.ComplaintGraph.IsTerminal(to)
	if err := s.repo.UpdateStatus(ctx, id, c.Status, to, rec, closed); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
