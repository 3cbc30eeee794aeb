package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle chat session survives. Every message
// slides the window forward.
const DefaultSessionTTL = 30 * time.Minute

// Message is one chat turn kept in the session transcript.
type Message struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Session is the conversational state for one chat. A bound patient ID marks
// the session as identified.
type Session struct {
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	PatientName string     `json:"patient_name,omitempty"`
	History     []Message  `json:"history"`
}

// Identified reports whether a patient has been verified on this session.
func (s *Session) Identified() bool { return s.PatientID != nil }

// SessionStore persists chat sessions keyed by session id. Get on an unknown
// id returns a fresh empty session.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, id string, s *Session) error
}
