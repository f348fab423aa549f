package careerframe

import (
	"context"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goksnair/careerframe/core"
	"github.com/goksnair/careerframe/internal/testutil"
	"github.com/goksnair/careerframe/store"
	"github.com/goksnair/careerframe/textgen"
)

const longAnswer = "I led a team of 5 engineers and shipped a major rewrite that cut latency by 40%."

func newTestManager(opts ...Option) (*Manager, *testutil.MockProvider) {
	provider := testutil.NewMockProvider()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(provider, opts...), provider
}

func mustStart(t *testing.T, mgr *Manager) *core.Session {
	t.Helper()
	session, err := mgr.Start(context.Background(), "user-42", "career_assessment")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return session
}

func TestStartInvalidUser(t *testing.T) {
	mgr, _ := newTestManager()
	for _, userID := range []string{"", "   "} {
		if _, err := mgr.Start(context.Background(), userID, ""); !core.IsInvalidUser(err) {
			t.Errorf("Start(%q): expected invalid_user, got %v", userID, err)
		}
	}
}

func TestStartSeedsSession(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)

	if session.ID == "" {
		t.Error("session id must not be empty")
	}
	if session.Phase != core.PhaseIntroduction {
		t.Errorf("initial phase = %s", session.Phase)
	}
	if len(session.Turns) != 1 || session.Turns[0].Sender != core.SenderCoach {
		t.Fatalf("expected exactly one seeded coach turn, got %+v", session.Turns)
	}
	if session.DimensionScores != (core.DimensionScores{}) {
		t.Errorf("dimension scores must start at zero: %+v", session.DimensionScores)
	}
	if session.OverallScore != 0 {
		t.Errorf("overall must start at zero, got %v", session.OverallScore)
	}
}

// The concrete acceptance scenario: a substantial first answer advances the
// interview and credits knowledge and results.
func TestSendFirstSubstantialAnswer(t *testing.T) {
	mgr, provider := newTestManager()
	session := mustStart(t, mgr)

	updated, turn, err := mgr.Send(context.Background(), session.ID, longAnswer)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if updated.Phase != core.PhaseStoryExtraction {
		t.Errorf("phase = %s, want story_extraction", updated.Phase)
	}
	if updated.DimensionScores.Knowledge <= 0 || updated.DimensionScores.Results <= 0 {
		t.Errorf("knowledge/results did not increase: %+v", updated.DimensionScores)
	}
	want := updated.DimensionScores.Weighted()
	if math.Abs(updated.OverallScore-want) > 1e-12 {
		t.Errorf("overall %v inconsistent with weight table (%v)", updated.OverallScore, want)
	}
	if turn.Sender != core.SenderCoach || turn.Text != "mock coaching reply" {
		t.Errorf("unexpected reply turn: %+v", turn)
	}
	if len(turn.Suggestions) == 0 {
		t.Errorf("reply turn should carry follow-up suggestions")
	}
	if len(updated.Turns) != 3 {
		t.Errorf("expected seed + user + reply turns, got %d", len(updated.Turns))
	}
	if got := provider.Calls[0].Phase; got != core.PhaseIntroduction {
		t.Errorf("provider must see the submission phase, got %s", got)
	}
}

func TestSendShortOpeningSelfLoops(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)

	updated, _, err := mgr.Send(context.Background(), session.ID, "hi there")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if updated.Phase != core.PhaseIntroduction {
		t.Errorf("short opening should stay in introduction, got %s", updated.Phase)
	}
	if updated.DimensionScores.Clarity != 0.15 {
		t.Errorf("introduction turn should credit clarity 0.15, got %v", updated.DimensionScores.Clarity)
	}
	if updated.CompletionPercentage != 0 {
		t.Errorf("self-loop must not earn progress, got %d", updated.CompletionPercentage)
	}
}

func TestSendTimestampsReplyAfterUserTurn(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)

	updated, _, err := mgr.Send(context.Background(), session.ID, longAnswer)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	userTurn := updated.Turns[1]
	replyTurn := updated.Turns[2]
	if !replyTurn.Timestamp.After(userTurn.Timestamp) {
		t.Errorf("reply timestamp %v not after user turn %v; provider latency unaccounted",
			replyTurn.Timestamp, userTurn.Timestamp)
	}
	if updated.Stats.Elapsed != replyTurn.Timestamp.Sub(updated.CreatedAt) {
		t.Errorf("stats elapsed %v inconsistent with reply time", updated.Stats.Elapsed)
	}
}

func TestSendValidation(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, _, err := mgr.Send(ctx, session.ID, text)
		if !core.IsEmptyInput(err) {
			t.Errorf("Send(%q): expected empty_input, got %v", text, err)
		}
	}
	got, _, _ := mgr.Send(ctx, session.ID, longAnswer)
	if len(got.Turns) != 3 {
		t.Fatalf("rejected sends must not have appended turns")
	}

	if _, _, err := mgr.Send(ctx, "no-such-session", "hello"); !core.IsNoActiveSession(err) {
		t.Errorf("absent session: expected no_active_session, got %v", err)
	}
}

func TestSendAfterEnd(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)
	ctx := context.Background()

	summary, err := mgr.End(ctx, session.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if summary.SessionID != session.ID || summary.Text == "" {
		t.Errorf("bad summary: %+v", summary)
	}

	if _, _, err := mgr.Send(ctx, session.ID, longAnswer); !core.IsNoActiveSession(err) {
		t.Errorf("send after end: expected no_active_session, got %v", err)
	}
	if _, err := mgr.End(ctx, session.ID); !core.IsNoActiveSession(err) {
		t.Errorf("double end: expected no_active_session, got %v", err)
	}
}

func TestSendBusyRejectsConcurrentTurn(t *testing.T) {
	mgr, provider := newTestManager()
	session := mustStart(t, mgr)
	ctx := context.Background()

	entered := make(chan struct{})
	proceed := make(chan struct{})
	provider.OnGenerate = func(ctx context.Context, req textgen.Request) (*textgen.Reply, error) {
		close(entered)
		<-proceed
		return &textgen.Reply{Text: "slow reply"}, nil
	}

	firstDone := make(chan error, 1)
	go func() {
		_, _, err := mgr.Send(ctx, session.ID, longAnswer)
		firstDone <- err
	}()

	<-entered
	_, _, err := mgr.Send(ctx, session.ID, "second message while busy")
	if !core.IsSessionBusy(err) {
		t.Errorf("expected session_busy, got %v", err)
	}

	close(proceed)
	if err := <-firstDone; err != nil {
		t.Fatalf("first send: %v", err)
	}

	// With the first turn complete the session accepts input again.
	provider.OnGenerate = nil
	if _, _, err := mgr.Send(ctx, session.ID, "third message after release"); err != nil {
		t.Errorf("send after release: %v", err)
	}
}

func TestSendRollbackOnServiceFailure(t *testing.T) {
	st := store.NewMemory()
	mgr, provider := newTestManager(WithStore(st))
	session := mustStart(t, mgr)
	ctx := context.Background()

	provider.Err = core.E(core.ErrServiceUnavailable, "model offline")
	_, _, err := mgr.Send(ctx, session.ID, longAnswer)
	if !core.IsServiceUnavailable(err) {
		t.Fatalf("expected service_unavailable, got %v", err)
	}

	// The user turn must not have been persisted.
	stored, _ := st.Get(ctx, session.ID)
	if len(stored.Turns) != 1 {
		t.Fatalf("failed send leaked turns into the store: %d", len(stored.Turns))
	}

	// Retrying the same text succeeds and lands exactly once.
	provider.Err = nil
	updated, _, err := mgr.Send(ctx, session.ID, longAnswer)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(updated.Turns) != 3 {
		t.Errorf("retry produced %d turns, want 3", len(updated.Turns))
	}
}

func TestSendProviderTimeout(t *testing.T) {
	mgr, provider := newTestManager(WithProviderTimeout(30 * time.Millisecond))
	session := mustStart(t, mgr)

	provider.OnGenerate = func(ctx context.Context, req textgen.Request) (*textgen.Reply, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, _, err := mgr.Send(context.Background(), session.ID, longAnswer)
	if !core.IsServiceTimeout(err) {
		t.Fatalf("expected service_timeout, got %v", err)
	}
}

func TestFullInterviewProgression(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)
	ctx := context.Background()

	answers := []string{
		longAnswer,
		"The situation was a legacy monolith; I designed the migration plan and split the work across the team.",
		"We cut deploy time from 45 minutes to 6 and reduced infra spend by about 30% year over year.",
		"Beyond that I automated our on-call runbooks which saved roughly four hours per engineer per week.",
		"I want to optimize for roles where I own outcomes end to end and can target platform work.",
	}

	prev := core.DimensionScores{}
	phases := []core.Phase{
		core.PhaseStoryExtraction,
		core.PhaseCARAnalysis,
		core.PhaseRestQuantification,
		core.PhasePsychologistInsight,
		core.PhaseCompletion,
	}
	for i, answer := range answers {
		updated, _, err := mgr.Send(ctx, session.ID, answer)
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if updated.Phase != phases[i] {
			t.Fatalf("after send %d: phase %s, want %s", i, updated.Phase, phases[i])
		}
		// Reaching completion must report 100% immediately, not on the
		// next turn.
		if updated.Phase == core.PhaseCompletion && updated.CompletionPercentage != 100 {
			t.Fatalf("entering completion left percentage at %d, want 100", updated.CompletionPercentage)
		}
		for _, d := range []core.Dimension{core.DimResults, core.DimOptimization, core.DimClarity, core.DimKnowledge, core.DimEfficiency, core.DimTargeting} {
			if updated.DimensionScores.Get(d) < prev.Get(d) {
				t.Fatalf("dimension %s decreased on send %d", d, i)
			}
		}
		prev = updated.DimensionScores
	}

	final, _, err := mgr.Send(ctx, session.ID, "Anything else I should add?")
	if err != nil {
		t.Fatalf("post-completion send: %v", err)
	}
	if final.Phase != core.PhaseCompletion {
		t.Errorf("completion must be absorbing, got %s", final.Phase)
	}
	if final.OverallScore != 0.92 {
		t.Errorf("completed overall = %v, want the pinned 0.92", final.OverallScore)
	}
	if final.CompletionPercentage != 100 {
		t.Errorf("completion percentage = %d, want 100", final.CompletionPercentage)
	}
}

func TestAnalysisTriggersOnThirdUserTurn(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)
	ctx := context.Background()

	var turn *core.Turn
	var updated *core.Session
	var err error
	for i, text := range []string{
		longAnswer,
		"I paired with design and data science to reframe the problem before writing code.",
		"We measured a 25% lift in activation after the relaunch.",
	} {
		updated, turn, err = mgr.Send(ctx, session.ID, text)
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if i < 2 && updated.Analysis != nil {
			t.Fatalf("analysis computed early, after %d user turns", i+1)
		}
	}

	if updated.Analysis == nil {
		t.Fatal("analysis missing after third user turn")
	}
	if turn.Sender != core.SenderAnalyst {
		t.Errorf("analysis turn sender = %s, want analyst", turn.Sender)
	}
	if turn.Analysis == nil {
		t.Errorf("analysis must surface on the triggering turn")
	}

	// A later turn must not recompute it.
	after, next, err := mgr.Send(ctx, session.ID, "What does that mean for my next role?")
	if err != nil {
		t.Fatalf("follow-up send: %v", err)
	}
	if next.Analysis != nil {
		t.Errorf("analysis must surface on exactly one turn")
	}
	if !after.Analysis.ComputedAt.Equal(updated.Analysis.ComputedAt) {
		t.Errorf("analysis was recomputed")
	}
}

func TestRequestAnalysisContract(t *testing.T) {
	mgr, _ := newTestManager()
	session := mustStart(t, mgr)
	ctx := context.Background()

	if _, err := mgr.RequestAnalysis(ctx, session.ID); !core.IsInsufficientData(err) {
		t.Fatalf("expected insufficient_data, got %v", err)
	}
	if _, err := mgr.RequestAnalysis(ctx, "no-such-session"); !core.IsNoActiveSession(err) {
		t.Fatalf("absent session: expected no_active_session, got %v", err)
	}

	for _, text := range []string{longAnswer, "Then I scaled the approach to two more teams.", "Results held up across quarters."} {
		if _, _, err := mgr.Send(ctx, session.ID, text); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	first, err := mgr.RequestAnalysis(ctx, session.ID)
	if err != nil {
		t.Fatalf("request analysis: %v", err)
	}
	second, err := mgr.RequestAnalysis(ctx, session.ID)
	if err != nil {
		t.Fatalf("repeat request: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated requests must return the identical cached analysis")
	}
}

func TestMaxTurnsRetention(t *testing.T) {
	mgr, _ := newTestManager(WithMaxTurns(5))
	session := mustStart(t, mgr)
	ctx := context.Background()

	var updated *core.Session
	var err error
	for i := 0; i < 6; i++ {
		updated, _, err = mgr.Send(ctx, session.ID, longAnswer+strings.Repeat("!", i))
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if len(updated.Turns) > 5 {
		t.Errorf("retention bound exceeded: %d turns", len(updated.Turns))
	}
	if updated.Turns[0].Text != openingPrompt {
		t.Errorf("seeded opening turn must survive trimming")
	}
	for i := 1; i < len(updated.Turns); i++ {
		if updated.Turns[i].Seq <= updated.Turns[i-1].Seq {
			t.Errorf("turn sequence must keep increasing after trim: %d then %d",
				updated.Turns[i-1].Seq, updated.Turns[i].Seq)
		}
	}
}
