// Package textgen defines the contract with the external text-generation
// service that produces conversational replies for interview sessions. The
// engine consumes the reply text, insights payload, and follow-up prompts;
// the phase hint is advisory only and never drives phase advancement.
package textgen

import (
	"context"

	"github.com/goksnair/careerframe/core"
)

// Request carries one user turn to the service.
type Request struct {
	SessionID string     `json:"session_id"`
	UserText  string     `json:"user_text"`
	Phase     core.Phase `json:"phase"`
}

// Reply is the service response for one turn.
type Reply struct {
	Text               string         `json:"text"`
	Insights           *core.Insights `json:"insights,omitempty"`
	SuggestedFollowUps []string       `json:"suggested_follow_ups,omitempty"`
	NextPhaseHint      core.Phase     `json:"next_phase_hint,omitempty"`
}

// Provider generates coaching replies. Implementations must be safe for
// concurrent use across sessions; the engine never issues concurrent calls
// for the same session.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
	Name() string
}
