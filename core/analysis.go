package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AnalysisMinUserTurns gates personality analysis. Three user turns is the
// invariant that holds in both the standalone and integrated call paths once
// seeded coach turns are excluded from the count.
const AnalysisMinUserTurns = 3

// PersonalityTrait is one ranked trait in the analysis.
type PersonalityTrait struct {
	Name        string `json:"name"`
	Strength    int    `json:"strength"` // 0-100
	Description string `json:"description"`
}

// WorkStyle describes how the candidate prefers to operate.
type WorkStyle struct {
	Collaboration  string `json:"collaboration"`
	Communication  string `json:"communication"`
	ProblemSolving string `json:"problem_solving"`
	Leadership     string `json:"leadership"`
}

// PersonalityAnalysis is the one-shot profile synthesized from accumulated
// user text. Computed at most once per session, then cached and immutable.
type PersonalityAnalysis struct {
	Summary         string             `json:"summary"`
	Traits          []PersonalityTrait `json:"traits"`
	WorkStyle       WorkStyle          `json:"work_style"`
	Recommendations []string           `json:"recommendations"`
	Confidence      float64            `json:"confidence"`
	ComputedAt      time.Time          `json:"computed_at"`
}

func (a *PersonalityAnalysis) clone() *PersonalityAnalysis {
	if a == nil {
		return nil
	}
	out := *a
	out.Traits = make([]PersonalityTrait, len(a.Traits))
	copy(out.Traits, a.Traits)
	out.Recommendations = make([]string, len(a.Recommendations))
	copy(out.Recommendations, a.Recommendations)
	return &out
}

var traitDescriptions = map[string]string{
	"collaborative":  "Works through and with others; references shared ownership of outcomes.",
	"analytical":     "Reasons from data and measurement rather than intuition alone.",
	"adaptable":      "Comfortable with changing scope, tools, and direction.",
	"results-driven": "Frames work in terms of shipped outcomes and impact.",
}

var recommendationsByTrait = map[string]string{
	"collaborative":  "Roles with heavy cross-team coordination: platform, developer experience, program-adjacent engineering.",
	"analytical":     "Data-informed roles: growth engineering, performance, analytics platforms.",
	"adaptable":      "Early-stage or greenfield teams where scope shifts weekly.",
	"results-driven": "Delivery-focused roles with clear ownership of product outcomes.",
}

// AnalyzePersonality synthesizes a profile from the concatenation of all user
// text. Deterministic: the same text always yields the same analysis (modulo
// the timestamp).
func AnalyzePersonality(userText string, now time.Time) *PersonalityAnalysis {
	traits := rankTraits(userText)
	a := &PersonalityAnalysis{
		Traits:     traits,
		WorkStyle:  deriveWorkStyle(userText),
		Confidence: coherenceEstimate(userText),
		ComputedAt: now,
	}
	names := make([]string, 0, len(traits))
	for _, t := range traits {
		names = append(names, t.Name)
		if rec, ok := recommendationsByTrait[t.Name]; ok {
			a.Recommendations = append(a.Recommendations, rec)
		}
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = []string{
			"Generalist engineering roles while a clearer signal accumulates.",
			"Continue the interview to sharpen recommendations.",
		}
	}
	a.Summary = fmt.Sprintf(
		"Across %d words of interview responses the dominant signals are: %s.",
		len(strings.Fields(userText)), strings.Join(names, ", "),
	)
	return a
}

// rankTraits scores the trait vocabulary against the text and keeps the top
// 2-4 hits. Strength grows with match count and caps below 100.
func rankTraits(text string) []PersonalityTrait {
	type hit struct {
		name  string
		count int
	}
	var hits []hit
	for _, v := range vocabulary {
		if !v.trait {
			continue
		}
		n := len(v.pattern.FindAllStringIndex(text, -1))
		if n > 0 {
			hits = append(hits, hit{v.label, n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })
	if len(hits) > 4 {
		hits = hits[:4]
	}
	out := make([]PersonalityTrait, 0, len(hits))
	for _, h := range hits {
		strength := 55 + 10*h.count
		if strength > 95 {
			strength = 95
		}
		out = append(out, PersonalityTrait{
			Name:        h.name,
			Strength:    strength,
			Description: traitDescriptions[h.name],
		})
	}
	// Always report at least two traits so the profile reads as a profile.
	for _, fallback := range []string{"adaptable", "collaborative"} {
		if len(out) >= 2 {
			break
		}
		if !containsTrait(out, fallback) {
			out = append(out, PersonalityTrait{
				Name:        fallback,
				Strength:    50,
				Description: traitDescriptions[fallback],
			})
		}
	}
	return out
}

func containsTrait(traits []PersonalityTrait, name string) bool {
	for _, t := range traits {
		if t.Name == name {
			return true
		}
	}
	return false
}

func deriveWorkStyle(text string) WorkStyle {
	ws := WorkStyle{
		Collaboration:  "independent contributor",
		Communication:  "concise",
		ProblemSolving: "pragmatic",
		Leadership:     "emergent",
	}
	in := ExtractInsights(text)
	for _, t := range in.Traits {
		switch t {
		case "collaborative":
			ws.Collaboration = "team-oriented"
		case "analytical":
			ws.ProblemSolving = "data-driven"
		}
	}
	for _, sk := range in.Skills {
		switch sk {
		case "communication":
			ws.Communication = "expressive"
		case "leadership":
			ws.Leadership = "directive"
		}
	}
	return ws
}
