package lab

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/workflow"
)

// Biller raises charges for verified results. Satisfied by the billing
// service.
type Biller interface {
	Charge(ctx context.Context, patientID uuid.UUID, description string, quantity int, unitPrice float64) (*billing.Entry, error)
}

type Service struct {
	repo   Repository
	biller Biller
	tx     db.TxFunc
}

func NewService(repo Repository, biller Biller, tx db.TxFunc) *Service {
	return &Service{repo: repo, biller: biller, tx: tx}
}

func (s *Service) CreateTest(ctx context.Context, name, department string, unitPrice float64) (*Test, error) {
	if name == "" {
		return nil, fmt.Errorf("test_name is required")
	}
	if department == "" {
		return nil, fmt.Errorf("department is required")
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("unit_price must not be negative")
	}
	t := &Test{Name: name, Department: department, UnitPrice: unitPrice}
	if err := s.repo.CreateTest(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTests(ctx context.Context) ([]*Test, error) {
	return s.repo.ListTests(ctx)
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTest(ctx, id)
}

// CreateOrder opens a lab order in Pending Sample. The consultation service
// calls this for each investigation ordered by the doctor. The test is
// matched against the catalog when the result comes in, not here, so a
// doctor can order ahead of catalog upkeep.
func (s *Service) CreateOrder(ctx context.Context, consultationID, patientID uuid.UUID, patientPID, patientName, testName, orderedBy string) (*Order, error) {
	if testName == "" {
		return nil, fmt.Errorf("test_name is required")
	}
	o := &Order{
		ConsultationID: consultationID,
		PatientID:      patientID,
		PatientPID:     patientPID,
		PatientName:    patientName,
		TestName:       testName,
		Status:         workflow.LabOrderGraph.Initial,
		OrderedBy:      orderedBy,
		OrderedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// Queue lists orders in the given statuses, oldest first. An empty filter
// means the full active set.
func (s *Service) Queue(ctx context.Context, statuses []workflow.Status) ([]*Order, error) {
	if len(statuses) == 0 {
		statuses = workflow.LabOrderGraph.ActiveStatuses()
	}
	for _, st := range statuses {
		if !workflow.LabOrderGraph.Contains(st) {
			return nil, fmt.Errorf("status %q: %w", st, workflow.ErrInvalidTransition)
		}
	}
	return s.repo.ListOrdersByStatus(ctx, statuses)
}

// ResultsForPatient returns a patient's verified results, used by the
// assistant's view_results intent.
func (s *Service) ResultsForPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error) {
	orders, err := s.repo.ListOrdersByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	verified := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == workflow.LabResultVerified {
			verified = append(verified, o)
		}
	}
	return verified, nil
}

// CollectSample records sample collection for a pending order.
func (s *Service) CollectSample(ctx context.Context, orderID uuid.UUID, actor string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := workflow.LabOrderGraph.Step(o.Status, workflow.LabSampleCollected); err != nil {
		if workflow.LabOrderGraph.IsTerminal(o.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	if err := s.repo.MarkCollected(ctx, orderID, actor, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, orderID)
}

// SubmitResult verifies a collected sample's result and bills the test at
// its catalog price. The order update and the charge land atomically.
func (s *Service) SubmitResult(ctx context.Context, orderID uuid.UUID, result, actor string) (*Order, error) {
	if result == "" {
		return nil, fmt.Errorf("result is required")
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := workflow.LabOrderGraph.Step(o.Status, workflow.LabResultVerified); err != nil {
		if workflow.LabOrderGraph.IsTerminal(o.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	test, err := s.repo.GetTestByName(ctx, o.TestName)
	if err != nil {
		return nil, fmt.Errorf("test %q not in catalog: %w", o.TestName, err)
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.MarkVerified(ctx, orderID, result, actor, time.Now().UTC()); err != nil {
			return err
		}
		_, err := s.biller.Charge(ctx, o.PatientID, fmt.Sprintf("Lab Test: %s", test.Name), 1, test.UnitPrice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, orderID)
}
