package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// RecommendSystemPrompt provides strict directions and schema for JSON
// recommendation output.
func RecommendSystemPrompt() string {
	return `You are a certified home accessibility consultant. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- recommendations is an array of concrete, actionable home modifications.
- Use lowercase priority values: high, medium, low.
- Use lowercase category values: safety, mobility, improvement.
- Base every recommendation on the detected features provided by the user; keep items concise.

Schema (example with empty values):
{
  "recommendations": [
    {
      "title": "<string>",
      "description": "<string>",
      "priority": "<high|medium|low>",
      "category": "<safety|mobility|improvement>"
    }
  ]
}`
}

// RecommendUserPrompt builds a compact user message around the
// aggregated labels.
func RecommendUserPrompt(labels []analysis.Label, imageCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We analyzed %d photos of a home for accessibility. Detected features:\n", imageCount)
	for _, l := range labels {
		fmt.Fprintf(&b, "- %s (%.0f%% confidence)\n", l.Name, l.Confidence)
	}
	b.WriteString("Respond with accessibility recommendations as JSON per schema.")
	return b.String()
}

// RecommendationPayload matches the schema used by the recommendation
// system prompt.
type RecommendationPayload struct {
	Recommendations []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Category    string `json:"category"`
	} `json:"recommendations"`
}

// StripFences removes accidental markdown code fences around a JSON
// body. Models occasionally add them despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
