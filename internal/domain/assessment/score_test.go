package assessment

import (
	"testing"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

func label(name string, confidence float64) analysis.Label {
	return analysis.Label{Name: name, Confidence: confidence}
}

func TestScoreNeutralWithoutSignal(t *testing.T) {
	k := DefaultKeywords()

	if got := Score(nil, k); got != NeutralScore {
		t.Fatalf("empty input: got %d, want %d", got, NeutralScore)
	}

	unmatched := []analysis.Label{
		label("Tree", 99),
		label("Sky", 88.5),
	}
	if got := Score(unmatched, k); got != NeutralScore {
		t.Fatalf("no matching labels: got %d, want %d", got, NeutralScore)
	}
}

func TestScoreWeighted(t *testing.T) {
	k := DefaultKeywords()

	// positive 0.90 + 0.80 = 1.70, negative 0.75
	// 1.70 / 2.45 * 100 = 69.38 -> rounds to 69
	labels := []analysis.Label{
		label("Ramp", 90),
		label("Handrail", 80),
		label("Stairs", 75),
	}
	if got := Score(labels, k); got != 69 {
		t.Fatalf("got %d, want 69", got)
	}
}

func TestScoreExtremes(t *testing.T) {
	k := DefaultKeywords()

	allGood := []analysis.Label{label("Ramp", 95), label("Elevator", 70)}
	if got := Score(allGood, k); got != 100 {
		t.Fatalf("only positive labels: got %d, want 100", got)
	}

	allBad := []analysis.Label{label("Stairs", 95), label("Narrow Hallway", 70)}
	if got := Score(allBad, k); got != 0 {
		t.Fatalf("only barrier labels: got %d, want 0", got)
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	k := DefaultKeywords()
	a := []analysis.Label{
		label("Ramp", 91.2),
		label("Stairs", 84.7),
		label("Grab Bar", 76),
		label("Clutter", 66.6),
	}
	b := []analysis.Label{a[3], a[1], a[0], a[2]}

	if Score(a, k) != Score(b, k) {
		t.Fatalf("score changed with input order: %d vs %d", Score(a, k), Score(b, k))
	}
}

func TestCategorize(t *testing.T) {
	k := DefaultKeywords()
	labels := []analysis.Label{
		label("Wheelchair Ramp", 90),
		label("Stairs", 85),
		label("Tree", 99), // matches neither set
	}

	features, barriers := Categorize(labels, k)
	if len(features) != 1 || features[0].Name != "Wheelchair Ramp" {
		t.Fatalf("features = %+v, want single ramp label", features)
	}
	if len(barriers) != 1 || barriers[0].Name != "Stairs" {
		t.Fatalf("barriers = %+v, want single stairs label", barriers)
	}
}

func TestCategorizePositiveWinsTie(t *testing.T) {
	k := DefaultKeywords()
	// "wide steps" matches both "wide" (positive) and "step" (barrier)
	features, barriers := Categorize([]analysis.Label{label("Wide Steps", 80)}, k)
	if len(features) != 1 {
		t.Fatalf("ambiguous label not counted positive: features=%+v barriers=%+v", features, barriers)
	}
	if len(barriers) != 0 {
		t.Fatalf("ambiguous label double-counted as barrier: %+v", barriers)
	}
}
