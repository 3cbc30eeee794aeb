package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/workflow"
)

// Biller raises charges for dispensed medication. Satisfied by the billing
// service.
type Biller interface {
	Charge(ctx context.Context, patientID uuid.UUID, description string, quantity int, unitPrice float64) (*billing.Entry, error)
}

type Service struct {
	repo       Repository
	biller     Biller
	classifier classify.Classifier
	tx         db.TxFunc
}

func NewService(repo Repository, biller Biller, classifier classify.Classifier, tx db.TxFunc) *Service {
	return &Service{repo: repo, biller: biller, classifier: classifier, tx: tx}
}

func (s *Service) CreateDrug(ctx context.Context, name, brandName, dosageForm string, stockLevel int, unitPrice float64, lowStockThreshold int) (*Drug, error) {
	if name == "" {
		return nil, fmt.Errorf("drug_name is required")
	}
	if stockLevel < 0 {
		return nil, fmt.Errorf("stock_level must not be negative")
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("unit_price must not be negative")
	}
	d := &Drug{
		Name:              name,
		BrandName:         brandName,
		DosageForm:        dosageForm,
		StockLevel:        stockLevel,
		UnitPrice:         unitPrice,
		LowStockThreshold: lowStockThreshold,
	}
	if err := s.repo.CreateDrug(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDrugs(ctx context.Context) ([]*Drug, error) {
	return s.repo.ListDrugs(ctx)
}

// LowStockDrugs returns formulary items at or below their reorder threshold.
func (s *Service) LowStockDrugs(ctx context.Context) ([]*Drug, error) {
	drugs, err := s.repo.ListDrugs(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]*Drug, 0)
	for _, d := range drugs {
		if d.LowStock() {
			low = append(low, d)
		}
	}
	return low, nil
}

func (s *Service) DeleteDrug(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDrug(ctx, id)
}

// Restock adds inventory to a formulary item.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, quantity int) (*Drug, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if err := s.repo.AdjustStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetDrug(ctx, id)
}

// Prescribe opens a Pending prescription. The consultation service calls
// this for each medication line the doctor writes.
func (s *Service) Prescribe(ctx context.Context, consultationID, patientID uuid.UUID, patientPID, patientName, drugName, dosage, instructions, prescribedBy string) (*Prescription, error) {
	if drugName == "" {
		return nil, fmt.Errorf("drug name is required")
	}
	p := &Prescription{
		ConsultationID: consultationID,
		PatientID:      patientID,
		PatientPID:     patientPID,
		PatientName:    patientName,
		DrugName:       drugName,
		Dosage:         dosage,
		Instructions:   instructions,
		Status:         workflow.PrescriptionGraph.Initial,
		PrescribedBy:   prescribedBy,
		PrescribedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreatePrescription(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PendingQueue lists undispensed prescriptions, oldest first.
func (s *Service) PendingQueue(ctx context.Context) ([]*Prescription, error) {
	return s.repo.ListPending(ctx)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetPrescription(ctx, id)
}

func (s *Service) ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// CheckInteractions screens a medication list for known drug-drug
// interactions before dispensing.
func (s *Service) CheckInteractions(ctx context.Context, medications []string) classify.InteractionResult {
	return s.classifier.Interactions(ctx, medications)
}

// Dispense hands out a pending prescription against a formulary item: the
// status flips, the stock decrements and the charge is raised in one
// transaction, so a stock shortage rolls everything back.
func (s *Service) Dispense(ctx context.Context, prescriptionID, formularyID uuid.UUID, quantity int, actor string) (*Prescription, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	p, err := s.repo.GetPrescription(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if err := workflow.PrescriptionGraph.Step(p.Status, workflow.RxDispensed); err != nil {
		if workflow.PrescriptionGraph.IsTerminal(p.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	drug, err := s.repo.GetDrug(ctx, formularyID)
	if err != nil {
		return nil, fmt.Errorf("formulary: %w", err)
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.MarkDispensed(ctx, prescriptionID, actor, time.Now().UTC()); err != nil {
			return err
		}
		if err := s.repo.AdjustStock(ctx, formularyID, -quantity); err != nil {
			return err
		}
		desc := fmt.Sprintf("%s (%s) - %s", drug.Name, drug.BrandName, drug.DosageForm)
		_, err := s.biller.Charge(ctx, p.PatientID, desc, quantity, drug.UnitPrice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetPrescription(ctx, prescriptionID)
}
