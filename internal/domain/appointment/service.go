package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/platform/workflow"
)

// PatientDirectory resolves patients at booking time. Satisfied by the
// patient service.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DoctorDirectory resolves doctors at booking time. Satisfied by the staff
// service.
type DoctorDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*staff.Doctor, error)
}

const pastLimit = 5

type Service struct {
	repo     Repository
	patients PatientDirectory
	doctors  DoctorDirectory
}

func NewService(repo Repository, patients PatientDirectory, doctors DoctorDirectory) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors}
}

// Book schedules a visit. Doctor name and department are copied onto the
// booking so later doctor edits do not rewrite history.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time, paymentStatus, actor string) (*Appointment, error) {
	if at.IsZero() {
		return nil, fmt.Errorf("appointment_time is required")
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient: %w", workflow.ErrResourceNotFound)
	}
	d, err := s.doctors.Resolve(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	now := time.Now().UTC()
	a := &Appointment{
		PatientID:       p.ID,
		PatientPID:      p.PID,
		PatientName:     p.Name,
		DoctorID:        d.ID,
		DoctorName:      d.Name,
		Department:      d.Department,
		AppointmentTime: at,
		PaymentStatus:   paymentStatus,
		Status:          workflow.AppointmentGraph.Initial,
		Audit: []workflow.AuditRecord{
			{Actor: actor, From: "", To: workflow.AppointmentGraph.Initial, At: now},
		},
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Queue lists bookings still waiting to be seen, earliest first.
func (s *Service) Queue(ctx context.Context) ([]*Appointment, error) {
	return s.repo.ListQueue(ctx, workflow.AppointmentGraph.ActiveStatuses())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// ForPatient splits a patient's bookings into upcoming and recent past.
func (s *Service) ForPatient(ctx context.Context, patientID uuid.UUID) (*PatientView, error) {
	now := time.Now().UTC()
	upcoming, err := s.repo.ListUpcoming(ctx, patientID, now)
	if err != nil {
		return nil, err
	}
	past, err := s.repo.ListPast(ctx, patientID, now, pastLimit)
	if err != nil {
		return nil, err
	}
	if upcoming == nil {
		upcoming = []*Appointment{}
	}
	if past == nil {
		past = []*Appointment{}
	}
	return &PatientView{Upcoming: upcoming, Past: past}, nil
}

// Slots offers bookable times for the next day. Schedule-aware slot search
// is out of scope; the front desk confirms the final time.
func (s *Service) Slots(_ context.Context) []Slot {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	day := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		day.Add(9 * time.Hour),
		day.Add(10*time.Hour + 30*time.Minute),
		day.Add(14 * time.Hour),
	}
	slots := make([]Slot, 0, len(times))
	for _, t := range times {
		slots = append(slots, Slot{Time: t, Display: t.Format("2006-01-02 03:04 PM")})
	}
	return slots
}

// Transition moves a booking along its lifecycle.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to workflow.Status, actor string) (*Appointment, error) {
	if !workflow.AppointmentGraph.Contains(to) {
		return nil, fmt.Errorf("status %q: %w", to, workflow.ErrInvalidTransition)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.AppointmentGraph.Step(a.Status, to); err != nil {
		if workflow.AppointmentGraph.IsTerminal(a.Status) {
			return nil, workflow.ErrAlreadyClosed
		}
		return nil, err
	}
	rec := workflow.AuditRecord{Actor: actor, From: a.Status, To: to, At: time.Now().UTC()}
	if err := s.repo.UpdateStatus(ctx, id, a.Status, to, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// CheckIn marks an arrived patient.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, actor string) (*Appointment, error) {
	return s.Transition(ctx, id, workflow.ApptCheckedIn, actor)
}
