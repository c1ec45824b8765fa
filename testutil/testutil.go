// Package testutil provides shared fixtures for tests outside the internal
// package.
package testutil

import (
	"time"

	"github.com/Vishruth-S/Project-Beaver/internal"
)

// SampleSession returns a populated session with one full question/answer
// exchange, suitable for exercising transcript rendering.
func SampleSession() *internal.ChatSession {
	confidence := 0.87
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &internal.ChatSession{
		SessionID:     "stripe_session_1",
		Name:          "Stripe",
		URL:           "https://docs.stripe.com",
		URLs:          []string{"https://docs.stripe.com"},
		CollectionID:  "cid-1",
		DocumentCount: 12,
		CreatedAt:     ts,
		LastActivity:  ts,
		Messages: []internal.Message{
			{
				ID:        "m1",
				Role:      internal.RoleUser,
				Text:      "How do I create a charge?",
				Timestamp: ts,
			},
			{
				ID:         "m2",
				Role:       internal.RoleAssistant,
				Text:       "Use the **Charges** API.\n```go\nclient.Charges.New(...)\n```",
				Timestamp:  ts.Add(5 * time.Second),
				Confidence: &confidence,
				Sources: []internal.Source{
					{Source: "https://docs.stripe.com/charges", Section: "Creating charges"},
				},
			},
		},
	}
}
