package core

// Phase identifies a stage of the interview sequence.
type Phase string

const (
	PhaseIntroduction        Phase = "introduction"
	PhaseStoryExtraction     Phase = "story_extraction"
	PhaseCARAnalysis         Phase = "car_analysis"
	PhaseRestQuantification  Phase = "rest_quantification"
	PhasePsychologistInsight Phase = "psychologist_insight"
	PhaseCompletion          Phase = "completion"
)

// phaseOrder is the fixed interview sequence. Transitions only ever move
// forward through it; completion is absorbing.
var phaseOrder = []Phase{
	PhaseIntroduction,
	PhaseStoryExtraction,
	PhaseCARAnalysis,
	PhaseRestQuantification,
	PhasePsychologistInsight,
	PhaseCompletion,
}

// completionDelta is the progress percentage earned when leaving a phase.
var completionDelta = map[Phase]int{
	PhaseIntroduction:        10,
	PhaseStoryExtraction:     15,
	PhaseCARAnalysis:         20,
	PhaseRestQuantification:  25,
	PhasePsychologistInsight: 25,
}

// introAdvanceThreshold is the minimum user reply length (in runes) required
// to leave the introduction. A near-empty opening reply keeps the interview
// in introduction; every later phase always advances.
const introAdvanceThreshold = 50

// Phases returns the interview sequence in order.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Valid reports whether p is one of the six interview phases.
func (p Phase) Valid() bool {
	for _, q := range phaseOrder {
		if p == q {
			return true
		}
	}
	return false
}

// Terminal reports whether p is the final phase.
func (p Phase) Terminal() bool { return p == PhaseCompletion }

func (p Phase) index() int {
	for i, q := range phaseOrder {
		if p == q {
			return i
		}
	}
	return -1
}

// PhaseMachine applies the transition rule for the interview sequence and
// tracks the user-facing completion percentage. The zero value is not usable;
// construct with NewPhaseMachine or ResumePhaseMachine.
type PhaseMachine struct {
	phase      Phase
	completion int
}

// NewPhaseMachine returns a machine positioned at the initial phase.
func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{phase: PhaseIntroduction}
}

// ResumePhaseMachine restores a machine from persisted session state.
func ResumePhaseMachine(phase Phase, completion int) *PhaseMachine {
	if !phase.Valid() {
		phase = PhaseIntroduction
	}
	if completion < 0 {
		completion = 0
	}
	if completion > 100 {
		completion = 100
	}
	return &PhaseMachine{phase: phase, completion: completion}
}

// Phase returns the current phase.
func (m *PhaseMachine) Phase() Phase { return m.phase }

// Completion returns the current progress percentage in [0,100].
func (m *PhaseMachine) Completion() int { return m.completion }

// Terminal reports whether the machine has reached completion.
func (m *PhaseMachine) Terminal() bool { return m.phase.Terminal() }

// Advance applies one transition for the given user reply and returns the
// resulting phase. Introduction self-loops until the reply exceeds the length
// threshold; every other phase advances unconditionally; completion stays put
// at 100% progress. Entering completion pins progress to 100 so the terminal
// state is consistent without a further turn.
func (m *PhaseMachine) Advance(userText string) Phase {
	if m.phase.Terminal() {
		m.completion = 100
		return m.phase
	}
	if m.phase == PhaseIntroduction && len([]rune(userText)) <= introAdvanceThreshold {
		return m.phase
	}
	m.completion += completionDelta[m.phase]
	if m.completion > 100 {
		m.completion = 100
	}
	m.phase = phaseOrder[m.phase.index()+1]
	if m.phase.Terminal() {
		m.completion = 100
	}
	return m.phase
}
