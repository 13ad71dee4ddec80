package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"assessment-backend/internal/generation"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.2
)

// Client implements generation.Backend using the Gemini API.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a Gemini backend. An empty key is rejected.
func NewClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, modelName: model}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Name() string { return "gemini" }

// Complete sends one GenerateContent call with JSON output requested.
func (c *Client) Complete(ctx context.Context, p generation.Prompt) (string, error) {
	// A model per call keeps generation settings off shared state.
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(defaultTemperature)
	if p.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", classify(err)
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// classify maps REST and gRPC failures onto a StatusError so the retry
// policy can tell transient from permanent.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code != 0 {
		return &generation.StatusError{StatusCode: gerr.Code, Err: err}
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		if code := httpStatus(s.Code()); code != 0 {
			return &generation.StatusError{StatusCode: code, Err: err}
		}
	}
	return fmt.Errorf("gemini generate content: %w", err)
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Internal:
		return http.StatusInternalServerError
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return 0
	}
}

var _ generation.Backend = (*Client)(nil)
