package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"assessment-backend/internal/generation"
)

const defaultTemperature = 0.2

// Client implements generation.Backend using OpenAI Chat Completions.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient constructs a new OpenAI backend. An empty key is rejected.
func NewClient(apiKey, model, baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GENERATION_MODEL is required for OpenAI")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: model,
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Complete sends one chat completion request in JSON mode.
func (c *Client) Complete(ctx context.Context, p generation.Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	// gpt-5 models only accept the default temperature.
	if !isGPT5(c.model) {
		req.Temperature = defaultTemperature
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		// Treated as an empty reply so validation reports it.
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classify attaches the HTTP status of provider errors so the retry policy can see it.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &generation.StatusError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &generation.StatusError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return fmt.Errorf("openai chat completion: %w", err)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ generation.Backend = (*Client)(nil)
