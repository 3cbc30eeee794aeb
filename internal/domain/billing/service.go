package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Charge appends an unpaid line item. Quantity defaults to 1; the total is
// always derived server-side from quantity and unit price.
func (s *Service) Charge(ctx context.Context, patientID uuid.UUID, description string, quantity int, unitPrice float64) (*Entry, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if quantity <= 0 {
		quantity = 1
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("unit_price must not be negative")
	}
	e := &Entry{
		PatientID:   patientID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: float64(quantity) * unitPrice,
		Status:      StatusUnpaid,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *Service) ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// UnpaidSummary returns a patient's open line items and total due. Used by
// the cashier view and the assistant's view_bill intent.
func (s *Service) UnpaidSummary(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	items, err := s.repo.ListUnpaidByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{PatientID: patientID, Unpaid: items}
	if sum.Unpaid == nil {
		sum.Unpaid = []*Entry{}
	}
	for _, e := range items {
		sum.TotalDue += e.TotalAmount
	}
	return sum, nil
}

func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Entry, error) {
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SettlePatient marks everything the patient owes as paid and reports the
// number of settled items.
func (s *Service) SettlePatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.repo.MarkAllPaid(ctx, patientID)
}
