package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/workflow"
)

var validRoles = map[string]bool{
	"admin":      true,
	"doctor":     true,
	"nurse":      true,
	"pharmacist": true,
	"lab_tech":   true,
	"clerk":      true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, name, department string, fee float64) (*Doctor, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if department == "" {
		return nil, fmt.Errorf("department is required")
	}
	if fee < 0 {
		return nil, fmt.Errorf("consultation_fee must not be negative")
	}
	d := &Doctor{Name: name, Department: department, ConsultationFee: fee}
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve looks up a doctor for assignment. Callers rely on
// workflow.ErrResourceNotFound when the id is unknown.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctor(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, name, department string, fee float64) (*Doctor, error) {
	d, err := s.repo.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		d.Name = name
	}
	if department != "" {
		d.Department = department
	}
	if fee >= 0 {
		d.ConsultationFee = fee
	}
	if err := s.repo.UpdateDoctor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDoctor(ctx, id)
}

func (s *Service) CreateAccount(ctx context.Context, username, password, name, role string) (*Account, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &Account{Username: username, Name: name, Role: role, PasswordHash: string(hash)}
	if a.Name == "" {
		a.Name = username
	}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate verifies a username/password pair. It returns the same error
// for unknown usernames and wrong passwords so the response does not reveal
// which accounts exist.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	a, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if err == workflow.ErrResourceNotFound {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return a, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAccounts(ctx)
}
