package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register finds the patient with the given contact or creates a new record
// with a fresh PID. The bool reports whether a new record was created.
func (s *Service) Register(ctx context.Context, name, contact string) (*Patient, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("name is required")
	}
	if contact == "" {
		return nil, false, fmt.Errorf("contact is required")
	}
	existing, err := s.repo.GetByContact(ctx, contact)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	p := &Patient{Name: name, Contact: contact}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPID(ctx context.Context, pid string) (*Patient, error) {
	return s.repo.GetByPID(ctx, pid)
}

// GetByContact looks up a patient by contact number. Used by the assistant
// identification flow.
func (s *Service) GetByContact(ctx context.Context, contact string) (*Patient, error) {
	p, err := s.repo.GetByContact(ctx, contact)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, workflow.ErrResourceNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, query, limit, offset)
}

// LogVitals records a vitals reading and attaches threshold anomaly alerts.
func (s *Service) LogVitals(ctx context.Context, patientID uuid.UUID, nurseID, nurseName string, vitals classify.Vitals) (*VitalsLog, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	v := &VitalsLog{
		PatientID:  patientID,
		NurseID:    nurseID,
		NurseName:  nurseName,
		Vitals:     vitals,
		Alerts:     classify.FlagVitals(vitals),
		RecordedAt: time.Now().UTC(),
	}
	if v.Alerts == nil {
		v.Alerts = []string{}
	}
	if err := s.repo.AddVitals(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) VitalsHistory(ctx context.Context, patientID uuid.UUID) ([]*VitalsLog, error) {
	return s.repo.ListVitals(ctx, patientID)
}
