package assessment

import (
	"testing"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

func TestAssembleKeepsProvidedRecommendations(t *testing.T) {
	k := DefaultKeywords()
	labels := []analysis.Label{label("Ramp", 90)}
	recs := []Recommendation{{Title: "Widen the entrance", Priority: "low", Category: "improvement"}}

	a := Assemble(labels, recs, 3, k)
	if len(a.Recommendations) != 1 || a.Recommendations[0].Title != "Widen the entrance" {
		t.Fatalf("recommendations replaced: %+v", a.Recommendations)
	}
	if a.AnalyzedImages != 3 {
		t.Fatalf("AnalyzedImages = %d, want 3", a.AnalyzedImages)
	}
	if a.TotalLabels != 1 {
		t.Fatalf("TotalLabels = %d, want 1", a.TotalLabels)
	}
}

func TestAssembleFallbackOnBarriers(t *testing.T) {
	k := DefaultKeywords()
	labels := []analysis.Label{label("Stairs", 85), label("Threshold", 70)}

	a := Assemble(labels, nil, 2, k)
	if len(a.Recommendations) == 0 {
		t.Fatal("expected fallback recommendations")
	}
	first := a.Recommendations[0]
	if first.Title != "Address Identified Barriers" || first.Priority != "high" || first.Category != "safety" {
		t.Fatalf("unexpected fallback: %+v", first)
	}
}

func TestAssembleFallbackWithoutFeatures(t *testing.T) {
	k := DefaultKeywords()

	// no labels at all: nothing to address, but still suggest improvements
	a := Assemble(nil, nil, 1, k)
	if a.Score != NeutralScore {
		t.Fatalf("score = %d, want neutral %d", a.Score, NeutralScore)
	}
	if len(a.Recommendations) != 1 || a.Recommendations[0].Title != "Add Accessibility Features" {
		t.Fatalf("unexpected recommendations: %+v", a.Recommendations)
	}
}

func TestAssembleNoFallbackWhenOnlyFeatures(t *testing.T) {
	k := DefaultKeywords()
	labels := []analysis.Label{label("Ramp", 90), label("Handrail", 80)}

	a := Assemble(labels, nil, 1, k)
	if len(a.Recommendations) != 0 {
		t.Fatalf("no barriers and features present, want no recommendations, got %+v", a.Recommendations)
	}
	if a.Score != 100 {
		t.Fatalf("score = %d, want 100", a.Score)
	}
}

func TestFallbackRecommendationsBoth(t *testing.T) {
	recs := FallbackRecommendations(nil, []analysis.Label{label("Stairs", 80)})
	if len(recs) != 2 {
		t.Fatalf("barriers and no features should yield both fallbacks, got %d", len(recs))
	}
	if recs[1].Title != "Add Accessibility Features" || recs[1].Priority != "medium" {
		t.Fatalf("unexpected second fallback: %+v", recs[1])
	}
}
