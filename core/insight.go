package core

import (
	"math"
	"regexp"
)

// Insights is what the extractor reads out of a single user turn: a
// presentational coherence signal plus keyword-matched skill and trait labels.
// This is deliberately shallow pattern matching, not semantic understanding;
// the vocabulary is a replaceable table, not a psychometric claim.
type Insights struct {
	Skills    []string `json:"skills,omitempty"`
	Traits    []string `json:"traits,omitempty"`
	Coherence float64  `json:"coherence"`
}

type vocabEntry struct {
	label   string
	trait   bool
	pattern *regexp.Regexp
}

var vocabulary = []vocabEntry{
	{"collaborative", true, regexp.MustCompile(`(?i)\b(team|collaborat\w*|together|cross.functional)\b`)},
	{"analytical", true, regexp.MustCompile(`(?i)\b(analy\w+|data|metric\w*|measur\w*)\b`)},
	{"adaptable", true, regexp.MustCompile(`(?i)\b(adapt\w*|pivot\w*|chang\w*|flexib\w*)\b`)},
	{"results-driven", true, regexp.MustCompile(`(?i)\b(deliver\w*|shipp?ed|achiev\w*|impact|outcome\w*)\b`)},
	{"leadership", false, regexp.MustCompile(`(?i)\b(led|lead\w*|manag\w*|mentor\w*|coordinat\w*)\b`)},
	{"problem solving", false, regexp.MustCompile(`(?i)\b(solv\w*|debugg\w*|troubleshoot\w*|fix\w*)\b`)},
	{"communication", false, regexp.MustCompile(`(?i)\b(present\w*|wrote|writing|communicat\w*|explain\w*)\b`)},
	{"optimization", false, regexp.MustCompile(`(?i)\b(optimi\w*|improv\w*|reduc\w*|streamlin\w*|cut)\b`)},
	{"planning", false, regexp.MustCompile(`(?i)\b(plann\w*|roadmap\w*|prioriti\w*|schedul\w*)\b`)},
}

// coherenceScale controls how quickly the coherence estimate saturates with
// reply length. At ~180 runes the estimate passes 0.6; it approaches 1.0
// asymptotically and never reaches it.
const coherenceScale = 180.0

// ExtractInsights scans one user turn. It is stateless: the same text always
// produces the same insights.
func ExtractInsights(text string) Insights {
	in := Insights{Coherence: coherenceEstimate(text)}
	for _, v := range vocabulary {
		if !v.pattern.MatchString(text) {
			continue
		}
		if v.trait {
			in.Traits = append(in.Traits, v.label)
		} else {
			in.Skills = append(in.Skills, v.label)
		}
	}
	return in
}

// coherenceEstimate grows monotonically with text length and saturates toward
// 1.0. It feeds presentation only, never the dimension scores.
func coherenceEstimate(text string) float64 {
	n := float64(len([]rune(text)))
	if n <= 0 {
		return 0
	}
	return 1 - math.Exp(-n/coherenceScale)
}
