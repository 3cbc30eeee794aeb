package classify

import (
	"context"
	"regexp"
	"strings"
)

// Assistant chat intents.
const (
	IntentGreeting              = "greeting"
	IntentEmergencySymptoms     = "check_symptoms_emergency"
	IntentNonEmergencySymptoms  = "check_symptoms_non_emergency"
	IntentViewResults           = "view_results"
	IntentViewBill              = "view_bill"
	IntentViewAppointments      = "view_appointments"
	IntentProvideIdentification = "provide_identification"
	IntentRequestIdentification = "request_identification"
	IntentGeneralChat           = "general_chat"
	IntentGoodbye               = "goodbye"
	IntentUnknown               = "unknown"
)

// IntentResult is an interpreted assistant chat message.
type IntentResult struct {
	Intent                 string            `json:"intent"`
	Reply                  string            `json:"ai_response_text"`
	RequiresIdentification bool              `json:"requires_identification"`
	Details                map[string]string `json:"action_details"`
	Symptoms               string            `json:"symptoms,omitempty"`
}

// IntentAnalyzer interprets assistant chat messages. Like Classifier it never
// returns an error; offline analyzers answer with keyword rules.
type IntentAnalyzer interface {
	Intent(ctx context.Context, message string, identified bool) IntentResult
}

var (
	greetingRe  = regexp.MustCompile(`\b(hello|hi|hey|good (morning|afternoon|evening))\b`)
	goodbyeRe   = regexp.MustCompile(`\b(bye|goodbye|thanks|thank you)\b`)
	emergencyRe = regexp.MustCompile(`\b(chest pain|bleeding|stroke|unconscious|can'?t breathe|breathing)\b`)
	symptomRe   = regexp.MustCompile(`\b(fever|headache|cough|cold|pain|nausea|dizzy|vomit)\b`)
	billRe      = regexp.MustCompile(`\b(bill|payment|due|charge|invoice)\b`)
	resultsRe   = regexp.MustCompile(`\b(result|report|lab|test)\b`)
	apptRe      = regexp.MustCompile(`\b(appointment|booking|schedule)\b`)
	phoneRe     = regexp.MustCompile(`\b\d{7,}\b`)
	identifyRe  = regexp.MustCompile(`\b(my name is|i am|this is)\b`)
)

// Intent interprets a chat message with keyword rules.
func (c *RuleClassifier) Intent(_ context.Context, message string, identified bool) IntentResult {
	lower := strings.ToLower(message)

	result := IntentResult{Intent: IntentUnknown, Details: map[string]string{}}
	switch {
	case emergencyRe.MatchString(lower):
		result.Intent = IntentEmergencySymptoms
		result.Reply = "That sounds serious. I am registering you with our emergency department right away."
		result.Symptoms = message
	case symptomRe.MatchString(lower):
		result.Intent = IntentNonEmergencySymptoms
		result.Reply = "I'm sorry you're unwell. Please consider booking an appointment; a doctor can assess you properly."
	case billRe.MatchString(lower):
		result.Intent = IntentViewBill
		result.Reply = "Let me pull up your outstanding bills."
	case resultsRe.MatchString(lower):
		result.Intent = IntentViewResults
		result.Reply = "Let me check your lab results."
	case apptRe.MatchString(lower):
		result.Intent = IntentViewAppointments
		result.Reply = "Let me look up your appointments."
	case phoneRe.MatchString(lower), identifyRe.MatchString(lower):
		result.Intent = IntentProvideIdentification
		result.Reply = "Thanks, let me look you up."
		if phone := phoneRe.FindString(lower); phone != "" {
			result.Details["phone_number"] = phone
		}
	case greetingRe.MatchString(lower):
		result.Intent = IntentGreeting
		result.Reply = "Hello! I'm the hospital patient assistant. How can I help you today?"
	case goodbyeRe.MatchString(lower):
		result.Intent = IntentGoodbye
		result.Reply = "Take care! Reach out any time you need help."
	default:
		result.Intent = IntentGeneralChat
		result.Reply = "I can help with bills, lab results, appointments, or symptoms. What do you need?"
	}

	return normalizeIntent(result, identified)
}

// Intent asks the gateway to interpret a chat message, falling back to rules.
func (c *RemoteClassifier) Intent(ctx context.Context, message string, identified bool) IntentResult {
	payload := map[string]interface{}{
		"task":       "intent",
		"message":    message,
		"identified": identified,
	}
	var result IntentResult
	if err := c.invoke(ctx, "/v1/classify/intent", payload, &result); err != nil {
		c.log.Warn().Err(err).Msg("intent analysis fell back to rules")
		return c.fallback.Intent(ctx, message, identified)
	}
	if result.Intent == "" {
		result.Intent = IntentUnknown
	}
	if result.Reply == "" {
		result.Reply = "Sorry, I didn't understand that."
	}
	if result.Details == nil {
		result.Details = map[string]string{}
	}
	return normalizeIntent(result, identified)
}

// normalizeIntent enforces the identification flow: identified patients are
// never asked again, and private data requests from unidentified patients
// become an identification prompt.
func normalizeIntent(result IntentResult, identified bool) IntentResult {
	if identified && result.Intent == IntentProvideIdentification {
		result.Intent = IntentGeneralChat
		result.RequiresIdentification = false
		result.Reply = "You're already identified. How can I assist further?"
		return result
	}

	if !identified {
		switch result.Intent {
		case IntentViewResults, IntentViewBill, IntentViewAppointments, IntentEmergencySymptoms:
			result.RequiresIdentification = true
			result.Intent = IntentRequestIdentification
			result.Reply = "Please provide your registered name or phone number to continue."
		}
	}
	return result
}
