package core

import (
	"reflect"
	"testing"
	"time"
)

const sampleInterview = `I led a team of 5 engineers through a platform rewrite.
We analyzed production data to decide what to cut and shipped in two quarters.
When priorities changed mid-project we adapted the plan and still delivered.`

func TestAnalyzePersonalityShape(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := AnalyzePersonality(sampleInterview, now)

	if len(a.Traits) < 2 || len(a.Traits) > 4 {
		t.Fatalf("expected 2-4 traits, got %d", len(a.Traits))
	}
	for _, tr := range a.Traits {
		if tr.Strength < 0 || tr.Strength > 100 {
			t.Errorf("trait %s strength %d out of range", tr.Name, tr.Strength)
		}
		if tr.Name == "" {
			t.Errorf("trait with empty name")
		}
	}
	if len(a.Recommendations) < 2 || len(a.Recommendations) > 4 {
		t.Errorf("expected 2-4 recommendations, got %d", len(a.Recommendations))
	}
	if a.Summary == "" {
		t.Errorf("summary must not be empty")
	}
	if a.Confidence <= 0 || a.Confidence >= 1 {
		t.Errorf("confidence %v out of (0,1)", a.Confidence)
	}
	if !a.ComputedAt.Equal(now) {
		t.Errorf("computed-at %v, want %v", a.ComputedAt, now)
	}
}

func TestAnalyzePersonalityDeterministic(t *testing.T) {
	now := time.Now()
	a := AnalyzePersonality(sampleInterview, now)
	b := AnalyzePersonality(sampleInterview, now)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("analysis must be deterministic for identical input")
	}
}

func TestAnalyzePersonalityRanksByEvidence(t *testing.T) {
	a := AnalyzePersonality(sampleInterview, time.Now())
	for i := 1; i < len(a.Traits); i++ {
		if a.Traits[i].Strength > a.Traits[i-1].Strength {
			t.Errorf("traits not ranked: %s(%d) after %s(%d)",
				a.Traits[i].Name, a.Traits[i].Strength,
				a.Traits[i-1].Name, a.Traits[i-1].Strength)
		}
	}
}

func TestAnalyzePersonalityThinInput(t *testing.T) {
	a := AnalyzePersonality("hello", time.Now())
	if len(a.Traits) < 2 {
		t.Errorf("thin input should still produce a minimal profile, got %d traits", len(a.Traits))
	}
	if len(a.Recommendations) == 0 {
		t.Errorf("thin input should still produce recommendations")
	}
}
