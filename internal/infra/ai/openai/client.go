package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client implements the recommender port on an OpenAI chat model.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Recommend(ctx context.Context, labels []analysis.Label, imageCount int) ([]assessment.Recommendation, error) {
	model := c.Model
	if model == "" {
		model = "o3-2025-04-16"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.RecommendSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.RecommendUserPrompt(labels, imageCount)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	var payload prompt.RecommendationPayload
	body := prompt.StripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("recommendation response is not valid JSON: %w", err)
	}

	recs := make([]assessment.Recommendation, 0, len(payload.Recommendations))
	for _, r := range payload.Recommendations {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		recs = append(recs, assessment.Recommendation{
			Title:       r.Title,
			Description: r.Description,
			Priority:    strings.ToLower(r.Priority),
			Category:    strings.ToLower(r.Category),
		})
	}
	return recs, nil
}
