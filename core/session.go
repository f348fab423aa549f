package core

import (
	"fmt"
	"strings"
	"time"
)

// Sender identifies the author of a turn.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderCoach   Sender = "coach"
	SenderAnalyst Sender = "analyst"
)

// Turn is one message exchanged in a session. Turns are immutable once
// appended; Seq is 1-based and strictly increasing within a session.
type Turn struct {
	Seq         int                  `json:"seq"`
	Sender      Sender               `json:"sender"`
	Text        string               `json:"text"`
	Timestamp   time.Time            `json:"timestamp"`
	Insights    *Insights            `json:"insights,omitempty"`
	Suggestions []string             `json:"suggestions,omitempty"`
	Analysis    *PersonalityAnalysis `json:"analysis,omitempty"`
}

// SessionStats is derived state, recomputed on every turn.
type SessionStats struct {
	Interactions int           `json:"interactions"`
	Elapsed      time.Duration `json:"elapsed"`
	Quality      float64       `json:"quality"`
}

// Session is the unit of interview state. All mutation goes through the
// Manager; everything here serializes for the session store.
type Session struct {
	ID                   string               `json:"id"`
	UserID               string               `json:"user_id"`
	Type                 string               `json:"type,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	Phase                Phase                `json:"phase"`
	CompletionPercentage int                  `json:"completion_percentage"`
	DimensionScores      DimensionScores      `json:"dimension_scores"`
	OverallScore         float64              `json:"overall_score"`
	Turns                []Turn               `json:"turns"`
	Stats                SessionStats         `json:"stats"`
	Analysis             *PersonalityAnalysis `json:"analysis,omitempty"`
	EndedAt              *time.Time           `json:"ended_at,omitempty"`
}

// Active reports whether the session still accepts turns.
func (s *Session) Active() bool { return s != nil && s.EndedAt == nil }

// UserTurnCount counts turns authored by the user.
func (s *Session) UserTurnCount() int {
	n := 0
	for _, t := range s.Turns {
		if t.Sender == SenderUser {
			n++
		}
	}
	return n
}

// UserText concatenates all user turns in order, newline separated.
func (s *Session) UserText() string {
	var b strings.Builder
	for _, t := range s.Turns {
		if t.Sender != SenderUser {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// LastTurn returns the most recent turn, or nil for an empty session.
func (s *Session) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// Clone returns a deep copy. The Manager mutates clones and persists them
// whole, so a failed pipeline run never leaves partial state behind.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)
	if s.Analysis != nil {
		a := s.Analysis.clone()
		out.Analysis = a
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	return &out
}

// RecomputeStats refreshes the derived stats block. Quality saturates toward
// 1.0 as the interaction count grows.
func (s *Session) RecomputeStats(now time.Time) {
	n := len(s.Turns)
	s.Stats = SessionStats{
		Interactions: n,
		Elapsed:      now.Sub(s.CreatedAt),
		Quality:      float64(n) / float64(n+4),
	}
}

// SessionSummary is the final artifact handed back when a session ends.
type SessionSummary struct {
	SessionID       string          `json:"session_id"`
	Text            string          `json:"text"`
	Phase           Phase           `json:"phase"`
	Completion      int             `json:"completion_percentage"`
	OverallScore    float64         `json:"overall_score"`
	DimensionScores DimensionScores `json:"dimension_scores"`
	Turns           int             `json:"turns"`
	Duration        time.Duration   `json:"duration"`
}

// Summarize renders the closing summary from the session's final state.
func (s *Session) Summarize(now time.Time) *SessionSummary {
	sum := &SessionSummary{
		SessionID:       s.ID,
		Phase:           s.Phase,
		Completion:      s.CompletionPercentage,
		OverallScore:    s.OverallScore,
		DimensionScores: s.DimensionScores,
		Turns:           len(s.Turns),
		Duration:        now.Sub(s.CreatedAt),
	}
	sum.Text = fmt.Sprintf(
		"Completed %d of 6 interview phases over %d turns. Overall readiness %.0f%%; strongest signals: %s.",
		s.Phase.index()+1, len(s.Turns), s.OverallScore*100, strings.Join(s.topDimensions(2), " and "),
	)
	return sum
}

func (s *Session) topDimensions(n int) []string {
	dims := []Dimension{DimResults, DimOptimization, DimClarity, DimKnowledge, DimEfficiency, DimTargeting}
	for i := 0; i < len(dims); i++ {
		for j := i + 1; j < len(dims); j++ {
			if s.DimensionScores.Get(dims[j]) > s.DimensionScores.Get(dims[i]) {
				dims[i], dims[j] = dims[j], dims[i]
			}
		}
	}
	if n > len(dims) {
		n = len(dims)
	}
	out := make([]string, 0, n)
	for _, d := range dims[:n] {
		out = append(out, string(d))
	}
	return out
}
