package pharmacy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
)

// -- Mocks --

type mockRepo struct {
	drugs map[uuid.UUID]*Drug
	rxs   map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		drugs: make(map[uuid.UUID]*Drug),
		rxs:   make(map[uuid.UUID]*Prescription),
	}
}

func (m *mockRepo) CreateDrug(_ context.Context, d *Drug) error {
	d.ID = uuid.New()
	d.Name = strings.ToLower(d.Name)
	d.CreatedAt = time.Now()
	m.drugs[d.ID] = d
	return nil
}

func (m *mockRepo) GetDrug(_ context.Context, id uuid.UUID) (*Drug, error) {
	d, ok := m.drugs[id]
	if !ok {
		return nil, workflow.ErrResourceNotFound
	}
	return d, nil
}

func (m *mockRepo) ListDrugs(_ context.Context) ([]*Drug, error) {
	var items []*Drug
	for _, d := range m.drugs {
		items = append(items, d)
	}
	return items, nil
}

func (m *mockRepo) DeleteDrug(_ context.Context, id uuid.UUID) error {
	if _, ok := m.drugs[id]; !ok {
		return workflow.ErrResourceNotFound
	}
	delete(m.drugs, id)
	return nil
}

func (m *mockRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	d, ok := m.drugs[id]
	if !ok {
		return workflow.ErrResourceNotFound
	}
	if d.StockLevel+delta < 0 {
		return errors.New("insufficient stock")
	}
	d.StockLevel += delta
	return nil
}

func (m *mockRepo) CreatePrescription(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	m.rxs[p.ID] = p
	return nil
}

func (m *mockRepo) GetPrescription(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.rxs[id]
	if !ok {
		return nil, workflow.ErrResourceNotFound
	}
	return p, nil
}

func (m *mockRepo) ListPending(_ context.Context) ([]*Prescription, error) {
	var items []*Prescription
	for _, p := range m.rxs {
		if p.Status == workflow.RxPending {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	var items []*Prescription
	for _, p := range m.rxs {
		if p.PatientID == patientID {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockRepo) MarkDispensed(_ context.Context, id uuid.UUID, dispensedBy string, dispensedAt time.Time) error {
	p, ok := m.rxs[id]
	if !ok {
		return workflow.ErrResourceNotFound
	}
	if p.Status != workflow.RxPending {
		return workflow.ErrConcurrentModification
	}
	p.Status = workflow.RxDispensed
	p.DispensedBy = &dispensedBy
	p.DispensedAt = &dispensedAt
	return nil
}

type mockBiller struct {
	charges []*billing.Entry
}

func (m *mockBiller) Charge(_ context.Context, patientID uuid.UUID, description string, quantity int, unitPrice float64) (*billing.Entry, error) {
	e := &billing.Entry{
		ID: uuid.New(), PatientID: patientID, Description: description,
		Quantity: quantity, UnitPrice: unitPrice, TotalAmount: float64(quantity) * unitPrice,
		Status: billing.StatusUnpaid,
	}
	m.charges = append(m.charges, e)
	return e, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc    *Service
	repo   *mockRepo
	biller *mockBiller
}

func newFixture() *fixture {
	repo := newMockRepo()
	biller := &mockBiller{}
	svc := NewService(repo, biller, classify.NewRuleClassifier(), passthroughTx)
	return &fixture{svc: svc, repo: repo, biller: biller}
}

// -- Tests --

func TestCreateDrug(t *testing.T) {
	f := newFixture()

	d, err := f.svc.CreateDrug(context.Background(), "Paracetamol", "Crocin", "500mg Tablet", 200, 2.50, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "paracetamol" {
		t.Errorf("expected lowercased name, got %q", d.Name)
	}
	if d.LowStock() {
		t.Error("200 units over a threshold of 50 is not low stock")
	}
}

func TestLowStockDrugs(t *testing.T) {
	f := newFixture()
	f.svc.CreateDrug(context.Background(), "Paracetamol", "Crocin", "500mg Tablet", 200, 2.50, 50)
	low, _ := f.svc.CreateDrug(context.Background(), "Amoxicillin", "Mox", "250mg Capsule", 10, 8, 25)

	items, err := f.svc.LowStockDrugs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != low.ID {
		t.Errorf("expected only the low-stock drug, got %d", len(items))
	}
}

func TestPrescribe_StartsPending(t *testing.T) {
	f := newFixture()

	p, err := f.svc.Prescribe(context.Background(), uuid.New(), uuid.New(), "PID-10004", "Meena Iyer",
		"Paracetamol", "500mg", "1 tablet twice daily", "Dr. Mehta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != workflow.RxPending {
		t.Errorf("expected Pending, got %s", p.Status)
	}
}

func TestDispense_FlipsStatusStockAndBill(t *testing.T) {
	f := newFixture()
	drug, _ := f.svc.CreateDrug(context.Background(), "Paracetamol", "Crocin", "500mg Tablet", 100, 2.50, 20)
	rx, _ := f.svc.Prescribe(context.Background(), uuid.New(), uuid.New(), "PID-10004", "Meena Iyer",
		"Paracetamol", "500mg", "twice daily", "Dr. Mehta")

	got, err := f.svc.Dispense(context.Background(), rx.ID, drug.ID, 10, "Pharmacist Shah")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != workflow.RxDispensed {
		t.Errorf("expected Dispensed, got %s", got.Status)
	}
	if f.repo.drugs[drug.ID].StockLevel != 90 {
		t.Errorf("expected stock 90, got %d", f.repo.drugs[drug.ID].StockLevel)
	}
	if len(f.biller.charges) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(f.biller.charges))
	}
	if f.biller.charges[0].TotalAmount != 25 {
		t.Errorf("expected charge total 25, got %v", f.biller.charges[0].TotalAmount)
	}
}

func TestDispense_InsufficientStock(t *testing.T) {
	f := newFixture()
	drug, _ := f.svc.CreateDrug(context.Background(), "Paracetamol", "Crocin", "500mg Tablet", 5, 2.50, 20)
	rx, _ := f.svc.Prescribe(context.Background(), uuid.New(), uuid.New(), "PID-10004", "Meena Iyer",
		"Paracetamol", "500mg", "twice daily", "Dr. Mehta")

	_, err := f.svc.Dispense(context.Background(), rx.ID, drug.ID, 10, "Pharmacist Shah")
	if err == nil {
		t.Fatal("expected error for insufficient stock")
	}
	if len(f.biller.charges) != 0 {
		t.Error("no charge should be raised when the dispense fails")
	}
}

func TestDispense_AlreadyDispensed(t *testing.T) {
	f := newFixture()
	drug, _ := f.svc.CreateDrug(context.Background(), "Paracetamol", "Crocin", "500mg Tablet", 100, 2.50, 20)
	rx, _ := f.svc.Prescribe(context.Background(), uuid.New(), uuid.New(), "PID-10004", "Meena Iyer",
		"Paracetamol", "500mg", "twice daily", "Dr. Mehta")
	f.svc.Dispense(context.Background(), rx.ID, drug.ID, 10, "Pharmacist Shah")

	_, err := f.svc.Dispense(context.Background(), rx.ID, drug.ID, 10, "Pharmacist Shah")
	if !errors.Is(err, workflow.ErrAlreadyClosed) {
		t.Errorf("expected ErrAlreadyClosed, got %v", err)
	}
}

func TestCheckInteractions_FlagsKnownPair(t *testing.T) {
	f := newFixture()

	result := f.svc.CheckInteractions(context.Background(), []string{"Warfarin", "Aspirin"})
	if len(result.Alerts) == 0 {
		t.Error("expected an interaction alert for warfarin + aspirin")
	}
}

func TestRestock(t *testing.T) {
	f := newFixture()
	drug, _ := f.svc.CreateDrug(context.Background(), "Paracetamol", "Crocin", "500mg Tablet", 5, 2.50, 20)

	got, err := f.svc.Restock(context.Background(), drug.ID, 95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StockLevel != 100 {
		t.Errorf("expected stock 100, got %d", got.StockLevel)
	}

	if _, err := f.svc.Restock(context.Background(), drug.ID, 0); err == nil {
		t.Error("expected error for non-positive quantity")
	}
}
