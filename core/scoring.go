package core

// Dimension names one of the six competency axes.
type Dimension string

const (
	DimResults      Dimension = "results"
	DimOptimization Dimension = "optimization"
	DimClarity      Dimension = "clarity"
	DimKnowledge    Dimension = "knowledge"
	DimEfficiency   Dimension = "efficiency"
	DimTargeting    Dimension = "targeting"
)

// DimensionWeights are the fixed aggregation weights. They sum to exactly 1.0;
// quantified results dominate, time-management signals matter least.
var DimensionWeights = map[Dimension]float64{
	DimResults:      0.25,
	DimOptimization: 0.15,
	DimClarity:      0.20,
	DimKnowledge:    0.20,
	DimEfficiency:   0.10,
	DimTargeting:    0.10,
}

// completionOverall is the pinned overall score once the interview completes.
const completionOverall = 0.92

// DimensionScores holds the six competency scores, each in [0,1].
type DimensionScores struct {
	Results      float64 `json:"results"`
	Optimization float64 `json:"optimization"`
	Clarity      float64 `json:"clarity"`
	Knowledge    float64 `json:"knowledge"`
	Efficiency   float64 `json:"efficiency"`
	Targeting    float64 `json:"targeting"`
}

// Get returns the score for a dimension.
func (d DimensionScores) Get(dim Dimension) float64 {
	switch dim {
	case DimResults:
		return d.Results
	case DimOptimization:
		return d.Optimization
	case DimClarity:
		return d.Clarity
	case DimKnowledge:
		return d.Knowledge
	case DimEfficiency:
		return d.Efficiency
	case DimTargeting:
		return d.Targeting
	}
	return 0
}

func (d *DimensionScores) add(dim Dimension, delta float64) {
	set := func(p *float64) {
		*p += delta
		if *p > 1.0 {
			*p = 1.0
		}
	}
	switch dim {
	case DimResults:
		set(&d.Results)
	case DimOptimization:
		set(&d.Optimization)
	case DimClarity:
		set(&d.Clarity)
	case DimKnowledge:
		set(&d.Knowledge)
	case DimEfficiency:
		set(&d.Efficiency)
	case DimTargeting:
		set(&d.Targeting)
	}
}

// Weighted returns the composite score: the weight table applied to the six
// dimensions. All-zeros yields 0, all-ones yields 1.
func (d DimensionScores) Weighted() float64 {
	sum := 0.0
	for dim, w := range DimensionWeights {
		sum += d.Get(dim) * w
	}
	return sum
}

// phaseDeltas maps each phase to the dimensions it rewards. Evidence only
// accumulates: deltas are positive and scores clamp at 1.0.
var phaseDeltas = map[Phase][]struct {
	dim   Dimension
	delta float64
}{
	PhaseIntroduction: {
		{DimClarity, 0.15},
	},
	PhaseStoryExtraction: {
		{DimKnowledge, 0.20},
		{DimResults, 0.10},
	},
	PhaseCARAnalysis: {
		{DimResults, 0.25},
		{DimEfficiency, 0.15},
	},
	PhasePsychologistInsight: {
		{DimOptimization, 0.30},
		{DimTargeting, 0.25},
	},
}

// ScoreTurn returns the score vector after crediting one user turn taken in
// the given phase. Scores never decrease and never exceed 1.0. Phases with no
// delta table entry (rest_quantification, completion) leave the vector as is.
func ScoreTurn(scores DimensionScores, phase Phase) DimensionScores {
	for _, pd := range phaseDeltas[phase] {
		scores.add(pd.dim, pd.delta)
	}
	return scores
}

// OverallScore aggregates the vector, honoring the completion override: once
// the interview completes the overall is pinned high rather than incremented
// further.
func OverallScore(scores DimensionScores, phase Phase) float64 {
	if phase.Terminal() {
		return completionOverall
	}
	return scores.Weighted()
}
