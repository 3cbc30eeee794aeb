package classify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RuleClassifier scores with deterministic keyword and threshold rules. It is
// the fallback behind RemoteClassifier and the default when no gateway is
// configured.
type RuleClassifier struct{}

// NewRuleClassifier returns a stateless rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Triage assigns an ESI score from symptom keywords and temperature.
func (c *RuleClassifier) Triage(_ context.Context, symptoms string, vitals Vitals) TriageResult {
	s := strings.ToLower(symptoms)

	switch {
	case strings.Contains(s, "chest pain"), strings.Contains(s, "stroke"), strings.Contains(s, "breathing"):
		return TriageResult{Score: 2, Level: TriageLevels[2]}
	case vitals.Temperature > 102:
		return TriageResult{Score: 3, Level: TriageLevels[3]}
	case strings.Contains(s, "fracture"), strings.Contains(s, "severe pain"):
		return TriageResult{Score: 3, Level: TriageLevels[3]}
	case strings.Contains(s, "sprain"), strings.Contains(s, "cut"):
		return TriageResult{Score: 4, Level: TriageLevels[4]}
	}
	return TriageResult{Score: 5, Level: TriageLevels[5]}
}

var (
	urgencyHighRe   = regexp.MustCompile(`\b(pain|severe|urgent|asap|emergency)\b`)
	urgencyMediumRe = regexp.MustCompile(`\b(mistake|wrong|upset|delay)\b`)

	categoryRules = []struct {
		re       *regexp.Regexp
		category string
	}{
		{regexp.MustCompile(`\b(bill|charge|payment|invoice|insurance)\b`), "Billing & Finance"},
		{regexp.MustCompile(`\b(rude|staff|nurse|reception|behavior)\b`), "Staff Behavior"},
		{regexp.MustCompile(`\b(doctor|medical|treatment|misdiagnosis|pain)\b`), "Medical Care"},
		{regexp.MustCompile(`\b(clean|room|housekeeping|facility)\b`), "Facility & Cleanliness"},
		{regexp.MustCompile(`\b(appointment|schedule|wait|delay)\b`), "Scheduling"},
	}
)

// Complaint buckets a ticket by keyword rules. Unmatched text lands in
// General Inquiry at Low urgency.
func (c *RuleClassifier) Complaint(_ context.Context, text string) ComplaintResult {
	lower := strings.ToLower(text)

	result := ComplaintResult{Category: "General Inquiry", Urgency: UrgencyLow}
	if urgencyHighRe.MatchString(lower) {
		result.Urgency = UrgencyHigh
	} else if urgencyMediumRe.MatchString(lower) {
		result.Urgency = UrgencyMedium
	}
	for _, rule := range categoryRules {
		if rule.re.MatchString(lower) {
			result.Category = rule.category
			break
		}
	}
	return result
}

// Interactions flags known dangerous medication pairs. The rule set covers
// the combinations the pharmacy desk most commonly sees.
func (c *RuleClassifier) Interactions(_ context.Context, medications []string) InteractionResult {
	if len(medications) < 2 {
		return InteractionResult{Alerts: []string{}}
	}

	joined := strings.ToLower(strings.Join(medications, " "))
	result := InteractionResult{Alerts: []string{}}
	if strings.Contains(joined, "warfarin") && strings.Contains(joined, "aspirin") {
		result.Alerts = append(result.Alerts, "Warfarin + Aspirin: High risk of severe bleeding.")
		result.Severe = true
	}
	return result
}

// FlagVitals runs threshold anomaly checks over a vitals reading and returns
// one alert string per finding. Zero-valued fields are treated as unrecorded.
func FlagVitals(v Vitals) []string {
	var alerts []string

	if v.BPSystolic != 0 && v.BPDiastolic != 0 {
		if v.BPSystolic > 140 || v.BPDiastolic > 90 {
			alerts = append(alerts, fmt.Sprintf("Hypertension Alert (Stage 1/2): %d/%d mmHg", v.BPSystolic, v.BPDiastolic))
		}
		if v.BPSystolic < 90 || v.BPDiastolic < 60 {
			alerts = append(alerts, fmt.Sprintf("Hypotension Alert: %d/%d mmHg", v.BPSystolic, v.BPDiastolic))
		}
	}
	if v.HeartRate != 0 {
		if v.HeartRate > 100 {
			alerts = append(alerts, fmt.Sprintf("Tachycardia Alert: %d bpm", v.HeartRate))
		}
		if v.HeartRate < 60 {
			alerts = append(alerts, fmt.Sprintf("Bradycardia Alert: %d bpm", v.HeartRate))
		}
	}
	if v.Temperature != 0 {
		if v.Temperature > 100.4 {
			alerts = append(alerts, fmt.Sprintf("Fever Alert: %.1f°F", v.Temperature))
		}
		if v.Temperature < 95.0 {
			alerts = append(alerts, fmt.Sprintf("Hypothermia Alert: %.1f°F", v.Temperature))
		}
	}
	return alerts
}
