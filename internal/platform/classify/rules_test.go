package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleTriageKeywords(t *testing.T) {
	c := NewRuleClassifier()
	ctx := context.Background()

	cases := []struct {
		symptoms string
		vitals   Vitals
		want     int
	}{
		{"crushing chest pain radiating to arm", Vitals{}, 2},
		{"possible stroke, slurred speech", Vitals{}, 2},
		{"difficulty breathing", Vitals{}, 2},
		{"feeling unwell", Vitals{Temperature: 103.1}, 3},
		{"suspected fracture of the wrist", Vitals{}, 3},
		{"severe pain in abdomen", Vitals{}, 3},
		{"ankle sprain from football", Vitals{}, 4},
		{"small cut on finger", Vitals{}, 4},
		{"prescription refill", Vitals{}, 5},
	}
	for _, tc := range cases {
		got := c.Triage(ctx, tc.symptoms, tc.vitals)
		assert.Equal(t, tc.want, got.Score, "symptoms: %s", tc.symptoms)
		assert.Equal(t, TriageLevels[tc.want], got.Level)
	}
}

func TestRuleTriageKeywordBeatsFever(t *testing.T) {
	c := NewRuleClassifier()
	// Chest pain outranks a high temperature reading.
	got := c.Triage(context.Background(), "chest pain", Vitals{Temperature: 103})
	assert.Equal(t, 2, got.Score)
}

func TestRuleComplaintUrgency(t *testing.T) {
	c := NewRuleClassifier()
	ctx := context.Background()

	assert.Equal(t, UrgencyHigh, c.Complaint(ctx, "this is urgent, please respond asap").Urgency)
	assert.Equal(t, UrgencyMedium, c.Complaint(ctx, "there was a mistake on my invoice").Urgency)
	assert.Equal(t, UrgencyLow, c.Complaint(ctx, "just a question about visiting hours").Urgency)
}

func TestRuleComplaintCategory(t *testing.T) {
	c := NewRuleClassifier()
	ctx := context.Background()

	cases := map[string]string{
		"I was double charged on my bill":        "Billing & Finance",
		"the nurse at reception was rude":        "Staff Behavior",
		"the doctor gave me the wrong treatment": "Medical Care",
		"my room was not clean":                  "Facility & Cleanliness",
		"my appointment keeps getting delayed":   "Scheduling",
		"what are your visiting hours":           "General Inquiry",
	}
	for text, want := range cases {
		assert.Equal(t, want, c.Complaint(ctx, text).Category, "text: %s", text)
	}
}

func TestRuleInteractions(t *testing.T) {
	c := NewRuleClassifier()
	ctx := context.Background()

	single := c.Interactions(ctx, []string{"Warfarin 5mg"})
	assert.Empty(t, single.Alerts)
	assert.False(t, single.Severe)

	pair := c.Interactions(ctx, []string{"Warfarin 5mg", "Aspirin 81mg"})
	assert.Len(t, pair.Alerts, 1)
	assert.True(t, pair.Severe)

	safe := c.Interactions(ctx, []string{"Paracetamol", "Cetirizine"})
	assert.Empty(t, safe.Alerts)
	assert.False(t, safe.Severe)
}

func TestFlagVitals(t *testing.T) {
	assert.Empty(t, FlagVitals(Vitals{Temperature: 98.6, HeartRate: 72, BPSystolic: 120, BPDiastolic: 80}))

	flags := FlagVitals(Vitals{Temperature: 101.2, HeartRate: 110, BPSystolic: 150, BPDiastolic: 95})
	assert.Len(t, flags, 3)
	assert.Contains(t, flags[0], "Hypertension")
	assert.Contains(t, flags[1], "Tachycardia")
	assert.Contains(t, flags[2], "Fever")

	low := FlagVitals(Vitals{Temperature: 94.0, HeartRate: 48, BPSystolic: 85, BPDiastolic: 55})
	assert.Len(t, low, 3)
	assert.Contains(t, low[0], "Hypotension")
	assert.Contains(t, low[1], "Bradycardia")
	assert.Contains(t, low[2], "Hypothermia")
}

func TestUrgencyRank(t *testing.T) {
	assert.Less(t, UrgencyRank(UrgencyHigh), UrgencyRank(UrgencyMedium))
	assert.Less(t, UrgencyRank(UrgencyMedium), UrgencyRank(UrgencyLow))
	assert.Equal(t, UrgencyRank(UrgencyLow), UrgencyRank("Unknown"))
}
