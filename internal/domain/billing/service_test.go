package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

// -- Mock Repository --

type mockRepo struct {
	entries map[uuid.UUID]*Entry
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[uuid.UUID]*Entry)}
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.entries[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, workflow.ErrResourceNotFound
	}
	return e, nil
}

func (m *mockRepo) ListAll(_ context.Context, limit, offset int) ([]*Entry, int, error) {
	var items []*Entry
	for _, e := range m.entries {
		items = append(items, e)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Entry, error) {
	var items []*Entry
	for _, e := range m.entries {
		if e.PatientID == patientID {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockRepo) ListUnpaidByPatient(_ context.Context, patientID uuid.UUID) ([]*Entry, error) {
	var items []*Entry
	for _, e := range m.entries {
		if e.PatientID == patientID && e.Status == StatusUnpaid {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockRepo) MarkPaid(_ context.Context, id uuid.UUID) error {
	e, ok := m.entries[id]
	if !ok {
		return workflow.ErrResourceNotFound
	}
	if e.Status != StatusUnpaid {
		return workflow.ErrConcurrentModification
	}
	e.Status = StatusPaid
	now := time.Now()
	e.PaidAt = &now
	return nil
}

func (m *mockRepo) MarkAllPaid(_ context.Context, patientID uuid.UUID) (int, error) {
	n := 0
	for _, e := range m.entries {
		if e.PatientID == patientID && e.Status == StatusUnpaid {
			e.Status = StatusPaid
			now := time.Now()
			e.PaidAt = &now
			n++
		}
	}
	return n, nil
}

// -- Tests --

func TestCharge_ComputesTotal(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()

	e, err := svc.Charge(context.Background(), pid, "Paracetamol 500mg", 3, 2.50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.TotalAmount != 7.50 {
		t.Errorf("expected total 7.50, got %v", e.TotalAmount)
	}
	if e.Status != StatusUnpaid {
		t.Errorf("expected Unpaid, got %s", e.Status)
	}
}

func TestCharge_DefaultsQuantity(t *testing.T) {
	svc := NewService(newMockRepo())

	e, err := svc.Charge(context.Background(), uuid.New(), "Consultation Fee - Dr. Mehta", 0, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Quantity != 1 || e.TotalAmount != 500 {
		t.Errorf("expected quantity 1 total 500, got %d / %v", e.Quantity, e.TotalAmount)
	}
}

func TestCharge_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Charge(context.Background(), uuid.Nil, "x", 1, 1); err == nil {
		t.Error("expected error for missing patient")
	}
	if _, err := svc.Charge(context.Background(), uuid.New(), "", 1, 1); err == nil {
		t.Error("expected error for missing description")
	}
	if _, err := svc.Charge(context.Background(), uuid.New(), "x", 1, -5); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestUnpaidSummary(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()
	svc.Charge(context.Background(), pid, "Consultation Fee", 1, 500)
	svc.Charge(context.Background(), pid, "CBC Test", 1, 350)
	other, _ := svc.Charge(context.Background(), uuid.New(), "X-Ray", 1, 800)
	_ = other

	sum, err := svc.UnpaidSummary(context.Background(), pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Unpaid) != 2 {
		t.Fatalf("expected 2 unpaid items, got %d", len(sum.Unpaid))
	}
	if sum.TotalDue != 850 {
		t.Errorf("expected total due 850, got %v", sum.TotalDue)
	}
}

func TestMarkPaid(t *testing.T) {
	svc := NewService(newMockRepo())
	e, _ := svc.Charge(context.Background(), uuid.New(), "Consultation Fee", 1, 500)

	paid, err := svc.MarkPaid(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != StatusPaid || paid.PaidAt == nil {
		t.Error("expected entry to be Paid with paid_at set")
	}

	_, err = svc.MarkPaid(context.Background(), e.ID)
	if !errors.Is(err, workflow.ErrConcurrentModification) {
		t.Errorf("paying twice should conflict, got %v", err)
	}
}

func TestSettlePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()
	svc.Charge(context.Background(), pid, "Consultation Fee", 1, 500)
	svc.Charge(context.Background(), pid, "CBC Test", 1, 350)

	n, err := svc.SettlePatient(context.Background(), pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 settled, got %d", n)
	}

	sum, _ := svc.UnpaidSummary(context.Background(), pid)
	if sum.TotalDue != 0 {
		t.Errorf("expected nothing due after settlement, got %v", sum.TotalDue)
	}
}
