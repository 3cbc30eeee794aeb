package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/emergency"
	"github.com/hms/hms/internal/domain/lab"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/classify"
)

// Transcript turns kept per session.
const historyLimit = 20

// PatientFinder looks up patients during the identification flow. Satisfied
// by the patient service.
type PatientFinder interface {
	GetByContact(ctx context.Context, contact string) (*patient.Patient, error)
}

// BillViewer answers view_bill requests. Satisfied by the billing service.
type BillViewer interface {
	UnpaidSummary(ctx context.Context, patientID uuid.UUID) (*billing.Summary, error)
}

// ResultViewer answers view_results requests. Satisfied by the lab service.
type ResultViewer interface {
	ResultsForPatient(ctx context.Context, patientID uuid.UUID) ([]*lab.Order, error)
}

// AppointmentViewer answers view_appointments requests. Satisfied by the
// appointment service.
type AppointmentViewer interface {
	ForPatient(ctx context.Context, patientID uuid.UUID) (*appointment.PatientView, error)
}

// EmergencyRegistrar opens ER cases for emergency symptom reports. Satisfied
// by the emergency service.
type EmergencyRegistrar interface {
	Register(ctx context.Context, patientID uuid.UUID, registeredByID, registeredByName, preHospitalInfo, symptoms string, vitals classify.Vitals) (*emergency.Case, error)
}

// ChatResponse is one assistant turn.
type ChatResponse struct {
	SessionID       string      `json:"session_id"`
	Sender          string      `json:"sender"`
	Text            string      `json:"text"`
	Intent          string      `json:"intent"`
	ActionPerformed string      `json:"action_performed,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

type Service struct {
	sessions     SessionStore
	analyzer     classify.IntentAnalyzer
	patients     PatientFinder
	bills        BillViewer
	results      ResultViewer
	appointments AppointmentViewer
	er           EmergencyRegistrar
	log          zerolog.Logger
}

func NewService(sessions SessionStore, analyzer classify.IntentAnalyzer, patients PatientFinder,
	bills BillViewer, results ResultViewer, appointments AppointmentViewer, er EmergencyRegistrar,
	log zerolog.Logger) *Service {
	return &Service{
		sessions:     sessions,
		analyzer:     analyzer,
		patients:     patients,
		bills:        bills,
		results:      results,
		appointments: appointments,
		er:           er,
		log:          log,
	}
}

// Chat handles one patient message. The analyzer interprets it, the matching
// domain service answers it, and the session records the turn. An empty
// session id starts a new conversation.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*ChatResponse, error) {
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := s.analyzer.Intent(ctx, message, sess.Identified())
	resp := &ChatResponse{
		SessionID: sessionID,
		Sender:    "ai",
		Text:      result.Reply,
		Intent:    result.Intent,
	}

	switch result.Intent {
	case classify.IntentProvideIdentification:
		s.identify(ctx, sess, result, resp)
	case classify.IntentViewBill:
		if !sess.Identified() {
			break
		}
		summary, err := s.bills.UnpaidSummary(ctx, *sess.PatientID)
		if err != nil {
			return nil, err
		}
		if len(summary.Unpaid) == 0 {
			resp.Text = "Good news: you have no outstanding bills."
		} else {
			resp.Text = fmt.Sprintf("You have %d unpaid item(s) totalling %.2f.", len(summary.Unpaid), summary.TotalDue)
		}
		resp.ActionPerformed = "fetch_bill"
		resp.Data = summary
	case classify.IntentViewResults:
		if !sess.Identified() {
			break
		}
		orders, err := s.results.ResultsForPatient(ctx, *sess.PatientID)
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			resp.Text = "You have no verified lab results yet."
		} else {
			resp.Text = fmt.Sprintf("You have %d verified lab result(s).", len(orders))
		}
		resp.ActionPerformed = "fetch_results"
		resp.Data = orders
	case classify.IntentViewAppointments:
		if !sess.Identified() {
			break
		}
		view, err := s.appointments.ForPatient(ctx, *sess.PatientID)
		if err != nil {
			return nil, err
		}
		resp.Text = fmt.Sprintf("You have %d upcoming appointment(s).", len(view.Upcoming))
		resp.ActionPerformed = "fetch_appointments"
		resp.Data = view
	case classify.IntentEmergencySymptoms:
		if !sess.Identified() {
			break
		}
		erCase, err := s.er.Register(ctx, *sess.PatientID, "", "AI Assistant",
			"Registered via assistant chat", result.Symptoms, classify.Vitals{})
		if err != nil {
			return nil, err
		}
		ref := erCase.ID.String()
		resp.Text = fmt.Sprintf("Okay %s, I've registered you with the emergency department (Ref: ...%s). Please proceed to the ER.",
			sess.PatientName, ref[len(ref)-6:])
		resp.ActionPerformed = "er_registration"
		resp.Data = erCase
	}

	now := time.Now().UTC()
	sess.History = append(sess.History,
		Message{Sender: "user", Text: message, At: now},
		Message{Sender: "ai", Text: resp.Text, At: now})
	if len(sess.History) > historyLimit {
		sess.History = sess.History[len(sess.History)-historyLimit:]
	}
	if err := s.sessions.Save(ctx, sessionID, sess); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("chat session save failed")
	}
	return resp, nil
}

// identify binds a patient to the session from a phone number in the message.
func (s *Service) identify(ctx context.Context, sess *Session, result classify.IntentResult, resp *ChatResponse) {
	phone := result.Details["phone_number"]
	if phone == "" {
		resp.Text = "Please include your registered phone number so I can look you up."
		resp.ActionPerformed = "incomplete_identification"
		return
	}
	p, err := s.patients.GetByContact(ctx, phone)
	if err != nil {
		resp.Text = fmt.Sprintf("I couldn't find a record for %s. Please register at the front desk first.", phone)
		resp.ActionPerformed = "identification_failed"
		return
	}
	sess.PatientID = &p.ID
	sess.PatientName = p.Name
	resp.Text = fmt.Sprintf("Thank you, %s. You are verified! How can I assist you?", p.Name)
	resp.ActionPerformed = "identification_success"
}
