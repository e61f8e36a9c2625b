package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/ai/prompt"
)

const (
	maxTokens     = 2048
	maxLabels     = 50
	minConfidence = 70.0
	signedURLTTL  = 10 * time.Minute
)

// URLSigner hands out temporary read URLs for stored images so the
// vision model can fetch them.
type URLSigner interface {
	PresignedGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Client implements the label detector port on top of an OpenAI vision
// model. The embedded client is long-lived and safe for concurrent use.
type Client struct {
	*openai.Client
	Model  string
	Signer URLSigner
}

func NewClient(apiKey, model string, signer URLSigner) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, Signer: signer}
}

func (c *Client) DetectLabels(ctx context.Context, img analysis.ImageRef) ([]analysis.Label, error) {
	signedURL, err := c.Signer.PresignedGet(ctx, img.Bucket, img.Key, signedURLTTL)
	if err != nil {
		return nil, analysis.Transient("sign image url: %w", err)
	}

	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.LabelSystemPrompt(maxLabels, minConfidence)},
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt.LabelUserPrompt()},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    signedURL,
					Detail: openai.ImageURLDetailAuto,
				}},
			}},
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
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, analysis.Transient("vision service returned no choices")
	}

	var payload prompt.LabelPayload
	body := prompt.StripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, analysis.Permanent("vision response is not valid JSON: %w", err)
	}

	labels := make([]analysis.Label, 0, len(payload.Labels))
	for _, l := range payload.Labels {
		// the model applies the confidence floor already; this guards
		// against it ignoring the instruction
		if l.Confidence < minConfidence {
			continue
		}
		labels = append(labels, analysis.Label{Name: l.Name, Confidence: l.Confidence})
		if len(labels) == maxLabels {
			break
		}
	}
	return labels, nil
}

// classify maps provider errors onto the transient/permanent taxonomy
// the orchestrator retries on.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 408 {
			return analysis.Transient("vision service throttled or unavailable: %w", err)
		}
		return analysis.Permanent("vision service rejected request: %w", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return analysis.Transient("vision call did not complete: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return analysis.Transient("vision call canceled: %w", err)
	}
	return analysis.Permanent("vision call failed: %w", err)
}
