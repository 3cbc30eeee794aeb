package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/lab"
	"github.com/hms/hms/internal/domain/pharmacy"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/domain/triage"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/workflow"
)

// TriageFlow is the slice of the triage service a consultation needs: the
// entry being consulted and the ability to close it out.
type TriageFlow interface {
	Get(ctx context.Context, id uuid.UUID) (*triage.Entry, error)
	Complete(ctx context.Context, entryID uuid.UUID, actor string) error
}

// DoctorDirectory resolves the consulting doctor and their fee. Satisfied by
// the staff service.
type DoctorDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*staff.Doctor, error)
}

// Prescriber opens pending prescriptions. Satisfied by the pharmacy service.
type Prescriber interface {
	Prescribe(ctx context.Context, consultationID, patientID uuid.UUID, patientPID, patientName, drugName, dosage, instructions, prescribedBy string) (*pharmacy.Prescription, error)
}

// LabOrderer opens pending lab orders. Satisfied by the lab service.
type LabOrderer interface {
	CreateOrder(ctx context.Context, consultationID, patientID uuid.UUID, patientPID, patientName, testName, orderedBy string) (*lab.Order, error)
}

// Biller raises the consultation fee. Satisfied by the billing service.
type Biller interface {
	Charge(ctx context.Context, patientID uuid.UUID, description string, quantity int, unitPrice float64) (*billing.Entry, error)
}

type Service struct {
	repo       Repository
	triage     TriageFlow
	doctors    DoctorDirectory
	prescriber Prescriber
	labs       LabOrderer
	biller     Biller
	tx         db.TxFunc
}

func NewService(repo Repository, triageFlow TriageFlow, doctors DoctorDirectory, prescriber Prescriber, labs LabOrderer, biller Biller, tx db.TxFunc) *Service {
	return &Service{
		repo:       repo,
		triage:     triageFlow,
		doctors:    doctors,
		prescriber: prescriber,
		labs:       labs,
		biller:     biller,
		tx:         tx,
	}
}

// Create finalizes a consultation for a triage entry. The record, its
// prescriptions and lab orders, the consultation fee and the triage
// completion all land in one transaction.
func (s *Service) Create(ctx context.Context, triageID, doctorID uuid.UUID, notes string, rxLines []RxLine, labTests []string, actor string) (*Result, error) {
	entry, err := s.triage.Get(ctx, triageID)
	if err != nil {
		return nil, fmt.Errorf("triage entry: %w", err)
	}
	if workflow.TriageGraph.IsTerminal(entry.Status) {
		return nil, workflow.ErrAlreadyClosed
	}
	doctor, err := s.doctors.Resolve(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}
	for _, line := range rxLines {
		if line.Name == "" {
			return nil, fmt.Errorf("prescription name is required")
		}
	}
	for _, test := range labTests {
		if test == "" {
			return nil, fmt.Errorf("lab test name is required")
		}
	}

	c := &Consultation{
		TriageID:       entry.ID,
		PatientID:      entry.PatientID,
		PatientPID:     entry.PatientPID,
		PatientName:    entry.PatientName,
		DoctorID:       doctor.ID,
		DoctorName:     doctor.Name,
		Notes:          notes,
		ConsultationAt: time.Now().UTC(),
	}
	result := &Result{
		Consultation:  c,
		Prescriptions: []*pharmacy.Prescription{},
		LabOrders:     []*lab.Order{},
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		for _, line := range rxLines {
			p, err := s.prescriber.Prescribe(ctx, c.ID, c.PatientID, c.PatientPID, c.PatientName,
				line.Name, line.Dosage, line.Instructions, doctor.Name)
			if err != nil {
				return err
			}
			result.Prescriptions = append(result.Prescriptions, p)
		}
		for _, test := range labTests {
			o, err := s.labs.CreateOrder(ctx, c.ID, c.PatientID, c.PatientPID, c.PatientName,
				test, doctor.Name)
			if err != nil {
				return err
			}
			result.LabOrders = append(result.LabOrders, o)
		}
		if doctor.ConsultationFee > 0 {
			desc := fmt.Sprintf("Consultation with %s", doctor.Name)
			if _, err := s.biller.Charge(ctx, c.PatientID, desc, 1, doctor.ConsultationFee); err != nil {
				return err
			}
		}
		return s.triage.Complete(ctx, entry.ID, actor)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}
