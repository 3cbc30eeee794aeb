package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

const defaultGatewayTimeout = 5 * time.Second

// Model replies sometimes wrap the JSON object in prose or markdown fences,
// so the first balanced-looking object is extracted rather than decoding the
// body directly.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// RemoteClassifier calls a model gateway for scoring and degrades to a
// RuleClassifier whenever the gateway is slow, down, or returns garbage.
// Every request is bounded by the configured timeout so entry creation
// latency stays predictable.
type RemoteClassifier struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	fallback *RuleClassifier
	log      zerolog.Logger
}

// NewRemoteClassifier builds a gateway-backed classifier. A zero timeout
// falls back to five seconds.
func NewRemoteClassifier(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *RemoteClassifier {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &RemoteClassifier{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		apiKey:   apiKey,
		fallback: NewRuleClassifier(),
		log:      log,
	}
}

// Triage asks the gateway for an ESI score. Out-of-range or missing scores
// count as a failed call and fall back to rules.
func (c *RemoteClassifier) Triage(ctx context.Context, symptoms string, vitals Vitals) TriageResult {
	payload := map[string]interface{}{
		"task":     "triage",
		"symptoms": symptoms,
		"vitals":   vitals,
	}
	var result TriageResult
	if err := c.invoke(ctx, "/v1/classify/triage", payload, &result); err != nil {
		c.log.Warn().Err(err).Msg("triage classification fell back to rules")
		return c.fallback.Triage(ctx, symptoms, vitals)
	}
	if result.Score < 1 || result.Score > 5 {
		c.log.Warn().Int("score", result.Score).Msg("gateway returned out-of-range score, using rules")
		return c.fallback.Triage(ctx, symptoms, vitals)
	}
	if result.Level == "" {
		result.Level = TriageLevels[result.Score]
	}
	return result
}

// Complaint asks the gateway to bucket a ticket. Answers outside the closed
// category and urgency sets are coerced to the defaults.
func (c *RemoteClassifier) Complaint(ctx context.Context, text string) ComplaintResult {
	payload := map[string]interface{}{
		"task": "complaint",
		"text": text,
	}
	var result ComplaintResult
	if err := c.invoke(ctx, "/v1/classify/complaint", payload, &result); err != nil {
		c.log.Warn().Err(err).Msg("complaint classification fell back to rules")
		return c.fallback.Complaint(ctx, text)
	}
	if !validCategory(result.Category) {
		result.Category = "General Inquiry"
	}
	switch result.Urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		result.Urgency = UrgencyLow
	}
	return result
}

// Interactions asks the gateway to screen a medication list.
func (c *RemoteClassifier) Interactions(ctx context.Context, medications []string) InteractionResult {
	if len(medications) < 2 {
		return InteractionResult{Alerts: []string{}}
	}
	payload := map[string]interface{}{
		"task":        "interactions",
		"medications": medications,
	}
	var result InteractionResult
	if err := c.invoke(ctx, "/v1/classify/interactions", payload, &result); err != nil {
		c.log.Warn().Err(err).Msg("interaction check fell back to rules")
		return c.fallback.Interactions(ctx, medications)
	}
	if result.Alerts == nil {
		result.Alerts = []string{}
	}
	return result
}

func (c *RemoteClassifier) invoke(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	obj := jsonObjectRe.Find(raw)
	if obj == nil {
		return fmt.Errorf("no JSON object in gateway response")
	}
	if err := json.Unmarshal(obj, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range ComplaintCategories {
		if c == category {
			return true
		}
	}
	return false
}
