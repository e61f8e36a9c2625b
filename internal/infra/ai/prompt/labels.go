package prompt

import "fmt"

// LabelSystemPrompt provides strict directions and schema for JSON label output.
func LabelSystemPrompt(maxLabels int, minConfidence float64) string {
	return fmt.Sprintf(`You are a computer vision system that detects objects and features in photos of homes. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- labels is an array of detected concepts, most confident first.
- Each label has a short generic name (e.g. "Stairs", "Ramp", "Doorway") and a confidence percentage between 0 and 100.
- Report at most %d labels and omit anything below %.0f confidence.
- Report what is visible; never invent features that are not in the image.

Schema (example with empty values):
{
  "labels": [
    {"name": "<string>", "confidence": 0}
  ]
}`, maxLabels, minConfidence)
}

// LabelUserPrompt is the text part sent next to the image.
func LabelUserPrompt() string {
	return "Detect all objects, rooms and architectural features visible in this photo and respond with the JSON per schema."
}

// LabelPayload matches the schema used by the label system prompt.
type LabelPayload struct {
	Labels []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"labels"`
}
