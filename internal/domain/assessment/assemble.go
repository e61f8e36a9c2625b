package assessment

import (
	"fmt"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// Assemble combines aggregated labels with recommendation text into the
// final assessment record. The recommendations list may be empty (the
// text-generation collaborator is optional enrichment); a deterministic
// fallback fills the gap so callers always receive at least one
// recommendation when there is any signal to react to.
func Assemble(labels []analysis.Label, recs []Recommendation, analyzedImages int, k Keywords) *Assessment {
	features, barriers := Categorize(labels, k)
	if len(recs) == 0 {
		recs = FallbackRecommendations(features, barriers)
	}
	return &Assessment{
		Score:            Score(labels, k),
		AnalyzedImages:   analyzedImages,
		PositiveFeatures: features,
		Barriers:         barriers,
		Recommendations:  recs,
		TotalLabels:      len(labels),
	}
}

// FallbackRecommendations is what we say when the LLM is unavailable
func FallbackRecommendations(features, barriers []analysis.Label) []Recommendation {
	recs := []Recommendation{}
	if len(barriers) > 0 {
		recs = append(recs, Recommendation{
			Title:       "Address Identified Barriers",
			Description: fmt.Sprintf("Consider modifications to address %d identified barriers", len(barriers)),
			Priority:    "high",
			Category:    "safety",
		})
	}
	if len(features) == 0 {
		recs = append(recs, Recommendation{
			Title:       "Add Accessibility Features",
			Description: "Consider adding ramps, handrails, and other accessibility features",
			Priority:    "medium",
			Category:    "improvement",
		})
	}
	return recs
}
