// Package careerframe implements the multi-phase career-assessment
// conversation engine: a stateful interview that scores six competency
// dimensions from free-text answers, advances through a fixed phase sequence,
// and produces a one-shot personality analysis once enough of the
// conversation has accumulated.
//
// The Manager is the caller-facing surface:
//
//	mgr := careerframe.New(provider)
//
//	session, _ := mgr.Start(ctx, "user-42", "career_assessment")
//	session, turn, _ := mgr.Send(ctx, session.ID, "I led a team of 5 engineers...")
//	fmt.Println(turn.Text)
//
// Replies come from an external text-generation service behind the
// textgen.Provider interface; phase advancement and scoring are decided
// entirely by the engine regardless of what the service suggests.
package careerframe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/goksnair/careerframe/core"
	"github.com/goksnair/careerframe/internal/id"
	"github.com/goksnair/careerframe/obs"
	"github.com/goksnair/careerframe/store"
	"github.com/goksnair/careerframe/textgen"
)

// openingPrompt seeds every new session with one coach turn.
const openingPrompt = "Welcome! I'm here to help you understand your professional story. To get started, tell me about yourself and the work you've been doing."

// Manager owns session identity, turn history, and the start/send/analyze/end
// contract. All session mutation happens on values loaded from the store and
// is persisted whole, so a failed pipeline run leaves no partial state and a
// retry with the same text is safe.
type Manager struct {
	provider        textgen.Provider
	store           store.Store
	clock           func() time.Time
	maxTurns        int
	providerTimeout time.Duration

	mu   sync.Mutex
	busy map[string]struct{}
}

// New constructs a Manager for the given text-generation provider.
func New(provider textgen.Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		clock:    time.Now,
		busy:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = store.NewMemory()
	}
	return m
}

// Start creates a session in the initial phase with one seeded coach turn and
// all dimension scores at zero.
func (m *Manager) Start(ctx context.Context, userID, sessionType string) (_ *core.Session, err error) {
	ctx, recorder := obs.StartOperation(ctx, "careerframe.Start")
	defer func() { recorder.End(err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, core.E(core.ErrInvalidUser, "user id must not be empty")
	}

	sessionID, err := id.New()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	recorder.AddAttributes(attribute.String("session.id", sessionID))

	now := m.clock()
	session := &core.Session{
		ID:        sessionID,
		UserID:    userID,
		Type:      sessionType,
		CreatedAt: now,
		Phase:     core.PhaseIntroduction,
		Turns: []core.Turn{
			{Seq: 1, Sender: core.SenderCoach, Text: openingPrompt, Timestamp: now},
		},
	}
	session.RecomputeStats(now)

	if err := m.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Send submits one user turn and runs the full pipeline: insight extraction,
// the external reply, dimension scoring, composite aggregation, phase
// advancement, stats, and the one-shot personality analysis once enough user
// turns exist. It returns the updated session and the generated reply turn.
//
// At most one Send may be in flight per session; a concurrent call is
// rejected with a session_busy error rather than interleaved. On a service
// failure nothing is persisted, so retrying with the same text is idempotent
// from the session's point of view.
func (m *Manager) Send(ctx context.Context, sessionID, text string) (_ *core.Session, _ *core.Turn, err error) {
	ctx, recorder := obs.StartOperation(ctx, "careerframe.Send",
		attribute.String("session.id", sessionID))
	defer func() { recorder.End(err) }()

	session, err := m.loadActive(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil, core.E(core.ErrEmptyInput, "message text must not be empty")
	}

	if !m.acquire(sessionID) {
		return nil, nil, core.E(core.ErrSessionBusy, "a message is already being processed for session %s", sessionID)
	}
	defer m.release(sessionID)

	now := m.clock()
	insights := core.ExtractInsights(trimmed)
	userTurn := core.Turn{
		Seq:       m.nextSeq(session),
		Sender:    core.SenderUser,
		Text:      trimmed,
		Timestamp: now,
		Insights:  &insights,
	}
	session.Turns = append(session.Turns, userTurn)

	reply, err := m.generate(ctx, textgen.Request{
		SessionID: sessionID,
		UserText:  trimmed,
		Phase:     session.Phase,
	})
	if err != nil {
		// Nothing was persisted; the session reverts to its pre-call state.
		return nil, nil, err
	}
	if reply.NextPhaseHint != "" {
		// Advisory only; phase advancement stays with the engine.
		recorder.AddAttributes(attribute.String("textgen.next_phase_hint", string(reply.NextPhaseHint)))
	}
	// Re-read the clock so the reply turn and stats account for provider
	// latency instead of reusing the submission time.
	repliedAt := m.clock()

	// The turn is credited to the phase it lands in: a first substantial
	// answer advances introduction -> story_extraction and earns that
	// phase's knowledge/results deltas.
	machine := core.ResumePhaseMachine(session.Phase, session.CompletionPercentage)
	machine.Advance(trimmed)
	session.Phase = machine.Phase()
	session.CompletionPercentage = machine.Completion()
	session.DimensionScores = core.ScoreTurn(session.DimensionScores, session.Phase)
	session.OverallScore = core.OverallScore(session.DimensionScores, session.Phase)
	recorder.AddAttributes(attribute.String("session.phase", string(session.Phase)))

	replyTurn := core.Turn{
		Seq:         m.nextSeq(session),
		Sender:      core.SenderCoach,
		Text:        reply.Text,
		Timestamp:   repliedAt,
		Insights:    reply.Insights,
		Suggestions: reply.SuggestedFollowUps,
	}
	if session.Analysis == nil && session.UserTurnCount() >= core.AnalysisMinUserTurns {
		analysis := core.AnalyzePersonality(session.UserText(), repliedAt)
		session.Analysis = analysis
		replyTurn.Sender = core.SenderAnalyst
		replyTurn.Analysis = analysis
	}
	session.Turns = append(session.Turns, replyTurn)

	session.RecomputeStats(repliedAt)
	m.trimTurns(session)

	if err := m.store.Put(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("persist session: %w", err)
	}

	obs.RecordTurn(attribute.String("session.phase", string(session.Phase)))
	out := session.Turns[len(session.Turns)-1]
	return session, &out, nil
}

// RequestAnalysis returns the personality analysis, computing and caching it
// on first call. Repeated calls return the identical cached value.
func (m *Manager) RequestAnalysis(ctx context.Context, sessionID string) (_ *core.PersonalityAnalysis, err error) {
	ctx, recorder := obs.StartOperation(ctx, "careerframe.RequestAnalysis",
		attribute.String("session.id", sessionID))
	defer func() { recorder.End(err) }()

	session, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Analysis != nil {
		return session.Analysis, nil
	}
	if n := session.UserTurnCount(); n < core.AnalysisMinUserTurns {
		return nil, core.E(core.ErrInsufficientData,
			"personality analysis needs %d user turns, have %d", core.AnalysisMinUserTurns, n)
	}

	session.Analysis = core.AnalyzePersonality(session.UserText(), m.clock())
	if err := m.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session.Analysis, nil
}

// End marks the session terminal and returns the closing summary. Any later
// Send on the session fails with a no_active_session error.
func (m *Manager) End(ctx context.Context, sessionID string) (_ *core.SessionSummary, err error) {
	ctx, recorder := obs.StartOperation(ctx, "careerframe.End",
		attribute.String("session.id", sessionID))
	defer func() { recorder.End(err) }()

	session, err := m.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !m.acquire(sessionID) {
		return nil, core.E(core.ErrSessionBusy, "a message is still being processed for session %s", sessionID)
	}
	defer m.release(sessionID)

	now := m.clock()
	session.EndedAt = &now
	session.RecomputeStats(now)

	if err := m.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session.Summarize(now), nil
}

// generate calls the external service, applying the configured deadline and
// folding failures into the engine's error taxonomy.
func (m *Manager) generate(ctx context.Context, req textgen.Request) (*textgen.Reply, error) {
	if m.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.providerTimeout)
		defer cancel()
	}
	reply, err := m.provider.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.Wrap(err, core.ErrServiceTimeout, "text generation timed out")
		}
		return nil, core.Wrap(err, core.ErrServiceUnavailable, "text generation failed")
	}
	if reply == nil || reply.Text == "" {
		return nil, core.E(core.ErrServiceUnavailable, "text generation returned an empty reply")
	}
	return reply, nil
}

func (m *Manager) load(ctx context.Context, sessionID string) (*core.Session, error) {
	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, core.E(core.ErrNoActiveSession, "session %s not found", sessionID)
	}
	return session, nil
}

func (m *Manager) loadActive(ctx context.Context, sessionID string) (*core.Session, error) {
	session, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, core.E(core.ErrNoActiveSession, "session %s has ended", sessionID)
	}
	return session, nil
}

func (m *Manager) acquire(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, inFlight := m.busy[sessionID]; inFlight {
		return false
	}
	m.busy[sessionID] = struct{}{}
	return true
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, sessionID)
}

// nextSeq continues the turn sequence even after retention trimming.
func (m *Manager) nextSeq(s *core.Session) int {
	if last := s.LastTurn(); last != nil {
		return last.Seq + 1
	}
	return 1
}

// trimTurns enforces the retention bound, always preserving the seeded
// opening turn.
func (m *Manager) trimTurns(s *core.Session) {
	if m.maxTurns <= 0 || len(s.Turns) <= m.maxTurns {
		return
	}
	start := len(s.Turns) - (m.maxTurns - 1)
	if start < 1 {
		start = 1
	}
	kept := make([]core.Turn, 0, m.maxTurns)
	kept = append(kept, s.Turns[0])
	kept = append(kept, s.Turns[start:]...)
	s.Turns = kept
}
