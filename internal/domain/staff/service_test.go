package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/workflow"
)

// -- Mock Repository --

type mockRepo struct {
	doctors  map[uuid.UUID]*Doctor
	accounts map[string]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:  make(map[uuid.UUID]*Doctor),
		accounts: make(map[string]*Account),
	}
}

func (m *mockRepo) CreateDoctor(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetDoctor(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, workflow.ErrResourceNotFound
	}
	return d, nil
}

func (m *mockRepo) ListDoctors(_ context.Context) ([]*Doctor, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		items = append(items, d)
	}
	return items, nil
}

func (m *mockRepo) UpdateDoctor(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return workflow.ErrResourceNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) DeleteDoctor(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return workflow.ErrResourceNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) CreateAccount(_ context.Context, a *Account) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.accounts[a.Username] = a
	return nil
}

func (m *mockRepo) GetAccountByUsername(_ context.Context, username string) (*Account, error) {
	a, ok := m.accounts[username]
	if !ok {
		return nil, workflow.ErrResourceNotFound
	}
	return a, nil
}

func (m *mockRepo) ListAccounts(_ context.Context) ([]*Account, error) {
	var items []*Account
	for _, a := range m.accounts {
		items = append(items, a)
	}
	return items, nil
}

// -- Tests --

func TestCreateDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	d, err := svc.CreateDoctor(context.Background(), "Dr. Mehta", "Cardiology", 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected an id to be assigned")
	}
	if d.ConsultationFee != 500 {
		t.Errorf("expected fee 500, got %v", d.ConsultationFee)
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.CreateDoctor(context.Background(), "", "Cardiology", 500); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := svc.CreateDoctor(context.Background(), "Dr. Mehta", "", 500); err == nil {
		t.Error("expected error for missing department")
	}
	if _, err := svc.CreateDoctor(context.Background(), "Dr. Mehta", "Cardiology", -1); err == nil {
		t.Error("expected error for negative fee")
	}
}

func TestResolve_UnknownDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Resolve(context.Background(), uuid.New())
	if err != workflow.ErrResourceNotFound {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestUpdateDoctor_PartialFields(t *testing.T) {
	svc := NewService(newMockRepo())
	d, _ := svc.CreateDoctor(context.Background(), "Dr. Mehta", "Cardiology", 500)

	updated, err := svc.UpdateDoctor(context.Background(), d.ID, "", "Neurology", -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Dr. Mehta" {
		t.Errorf("name should be unchanged, got %s", updated.Name)
	}
	if updated.Department != "Neurology" {
		t.Errorf("expected Neurology, got %s", updated.Department)
	}
	if updated.ConsultationFee != 500 {
		t.Errorf("fee should be unchanged, got %v", updated.ConsultationFee)
	}
}

func TestCreateAccount_HashesPassword(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	a, err := svc.CreateAccount(context.Background(), "nurse.patel", "s3cret-pass", "Nurse Patel", "nurse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.PasswordHash == "s3cret-pass" || a.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.CreateAccount(context.Background(), "", "longenough", "N", "nurse"); err == nil {
		t.Error("expected error for missing username")
	}
	if _, err := svc.CreateAccount(context.Background(), "u", "short", "N", "nurse"); err == nil {
		t.Error("expected error for short password")
	}
	if _, err := svc.CreateAccount(context.Background(), "u", "longenough", "N", "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newMockRepo())
	svc.CreateAccount(context.Background(), "doc.mehta", "correct-horse", "Dr. Mehta", "doctor")

	a, err := svc.Authenticate(context.Background(), "doc.mehta", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Role != "doctor" {
		t.Errorf("expected doctor role, got %s", a.Role)
	}

	if _, err := svc.Authenticate(context.Background(), "doc.mehta", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := svc.Authenticate(context.Background(), "ghost", "whatever"); err == nil {
		t.Error("expected error for unknown username")
	}
}
