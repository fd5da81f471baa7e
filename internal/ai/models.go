package ai

import (
	"strings"

	"transferair/internal/modules/intent"
)

// classification captures the structured output from the model.
type classification struct {
	// Intent is one of "quote", "order", "dispatcher", "info" or "other".
	Intent string `json:"intent"`

	// Origin and Destination are place names as the user wrote them.
	// Nullable because most messages do not mention both.
	Origin      *string `json:"origin,omitempty"`
	Destination *string `json:"destination,omitempty"`
}

func (c classification) guess() intent.Guess {
	g := intent.Guess{Kind: intent.KindText}
	switch strings.ToLower(strings.TrimSpace(c.Intent)) {
	case "quote":
		g.Kind = intent.KindCalculator
	case "order":
		g.Kind = intent.KindOrder
	case "dispatcher":
		g.Kind = intent.KindDispatcher
	case "info":
		g.Kind = intent.KindInfo
	}
	if c.Origin != nil {
		g.Origin = strings.TrimSpace(*c.Origin)
	}
	if c.Destination != nil {
		g.Destination = strings.TrimSpace(*c.Destination)
	}
	return g
}
