package assessment

import (
	"math"
	"strings"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// NeutralScore is returned when no label matches either keyword set.
const NeutralScore = 50

// Keywords holds the keyword sets driving scoring and categorization.
// Kept as data instead of logic so deployments can tune or localize
// them through config.
type Keywords struct {
	Positive []string `yaml:"positive" json:"positive"`
	Barriers []string `yaml:"barriers" json:"barriers"`
}

// DefaultKeywords returns the built-in sets
func DefaultKeywords() Keywords {
	return Keywords{
		Positive: []string{"ramp", "elevator", "lift", "handrail", "grab bar", "accessible", "wide"},
		Barriers: []string{"stairs", "step", "threshold", "narrow", "obstacle", "clutter"},
	}
}

func matchAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Categorize splits labels into positive features and barriers. A label
// matching neither set is dropped from both. The positive set is checked
// first; a label that textually matches both counts as positive, and that
// tie-break must stay stable.
func Categorize(labels []analysis.Label, k Keywords) (features, barriers []analysis.Label) {
	features = []analysis.Label{}
	barriers = []analysis.Label{}
	for _, l := range labels {
		name := strings.ToLower(l.Name)
		switch {
		case matchAny(name, k.Positive):
			features = append(features, l)
		case matchAny(name, k.Barriers):
			barriers = append(barriers, l)
		}
	}
	return features, barriers
}

// Score turns a label multiset into a 0-100 accessibility score. Every
// matching label contributes confidence/100 weight to the positive or
// negative accumulator per the same keyword test as Categorize.
// Accumulation is commutative, so input order never changes the result.
func Score(labels []analysis.Label, k Keywords) int {
	var positive, negative float64
	for _, l := range labels {
		name := strings.ToLower(l.Name)
		weight := l.Confidence / 100.0
		switch {
		case matchAny(name, k.Positive):
			positive += weight
		case matchAny(name, k.Barriers):
			negative += weight
		}
	}
	if positive+negative == 0 {
		// no signal at all, including the empty input case
		return NeutralScore
	}
	score := int(math.Round(positive / (positive + negative) * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
