// Package scripted implements a deterministic textgen provider with canned
// responses keyed by interview phase. It needs no network and backs demos,
// offline development, and the engine's own tests.
package scripted

import (
	"context"

	"github.com/goksnair/careerframe/core"
	"github.com/goksnair/careerframe/textgen"
)

func init() {
	textgen.Register("scripted", func(textgen.Config) (textgen.Provider, error) {
		return New(), nil
	})
}

type script struct {
	text      string
	followUps []string
}

var scriptByPhase = map[core.Phase]script{
	core.PhaseIntroduction: {
		text: "Thanks for getting started. Tell me a bit more about your background — what kind of work have you been doing, and what drew you to it?",
		followUps: []string{
			"What does a typical week look like for you?",
			"What part of your work energizes you most?",
		},
	},
	core.PhaseStoryExtraction: {
		text: "That's a useful picture. Walk me through one project you're proud of — what was the situation, and what did you actually do?",
		followUps: []string{
			"What was the hardest decision in that project?",
			"Who else was involved and how did you split the work?",
		},
	},
	core.PhaseCARAnalysis: {
		text: "Let's make that concrete. What changed because of your work — numbers, time saved, users reached?",
		followUps: []string{
			"Can you put a figure on the improvement?",
			"How did you measure success?",
		},
	},
	core.PhaseRestQuantification: {
		text: "Good. Beyond that headline project, where else did you move the needle? Rough numbers are fine.",
		followUps: []string{
			"Any smaller wins worth mentioning?",
		},
	},
	core.PhasePsychologistInsight: {
		text: "Stepping back from the projects: how do you decide what's worth your time, and where do you want the next few years to take you?",
		followUps: []string{
			"What kind of team brings out your best work?",
		},
	},
	core.PhaseCompletion: {
		text: "That completes the interview. Your profile and readiness scores are ready — review them whenever you like.",
	},
}

// Provider returns the canned reply for the session's current phase.
type Provider struct{}

// New constructs a scripted Provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "scripted" }

func (p *Provider) Generate(ctx context.Context, req textgen.Request) (*textgen.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := scriptByPhase[req.Phase]
	if !ok {
		s = scriptByPhase[core.PhaseIntroduction]
	}
	in := core.ExtractInsights(req.UserText)
	return &textgen.Reply{
		Text:               s.text,
		Insights:           &in,
		SuggestedFollowUps: s.followUps,
	}, nil
}
