package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/telemetry"
)

const (
	DefaultMaxRetries     = 3
	DefaultTimeout        = 60 * time.Second
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultBackoffMax     = 10 * time.Second
	DefaultMaxPromptChars = 24000
)

// Client implements Generator on top of a Backend, adding a per-attempt
// timeout, bounded retries for transient failures, and response validation.
type Client struct {
	Backend        Backend
	MaxRetries     int
	Timeout        time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	MaxPromptChars int

	// Sleep waits between attempts; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewClient returns a Client with default retry settings.
func NewClient(backend Backend) *Client {
	return &Client{
		Backend:        backend,
		MaxRetries:     DefaultMaxRetries,
		Timeout:        DefaultTimeout,
		BackoffBase:    DefaultBackoffBase,
		BackoffMax:     DefaultBackoffMax,
		MaxPromptChars: DefaultMaxPromptChars,
	}
}

// Generate calls the backend until it returns a reply or a non-transient
// error. A reply that fails validation is returned as ErrSchemaValidation
// without retrying. Other failures are wrapped in ErrGenerationService.
// Caller cancellation stops immediately.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	if req.QuestionCount < 1 {
		return Response{}, fmt.Errorf("%w: question count must be positive", errs.ErrValidation)
	}
	if strings.TrimSpace(req.Text) == "" {
		return Response{}, fmt.Errorf("%w: no text to generate from", errs.ErrValidation)
	}

	prompt := BuildPrompt(req, c.MaxPromptChars)
	fields := map[string]any{
		"document_id": req.DocumentID,
		"provider":    c.Backend.Name(),
		"prompt_hash": prompt.Hash(),
		"questions":   req.QuestionCount,
	}

	var lastErr error
	b := newBackOff(c.BackoffBase, c.BackoffMax)
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := nextDelay(b, c.BackoffMax, lastErr)
			metrics.IncGenerationRetry()
			telemetry.Warn("generation.retry", with(fields, map[string]any{
				"attempt":  attempt + 1,
				"delay_ms": delay.Milliseconds(),
				"err":      lastErr,
			}))
			if err := c.sleep(ctx, delay); err != nil {
				return Response{}, fmt.Errorf("generate: %w", err)
			}
		}

		raw, err := c.callOnce(ctx, prompt)
		if err == nil {
			resp, perr := Parse(raw, req.QuestionCount)
			if perr != nil {
				invalid := map[string]any{
					"attempt": attempt + 1,
					"code":    errs.Code(perr),
				}
				var qerr *InvalidQuestionError
				if errors.As(perr, &qerr) {
					invalid["question_index"] = qerr.Index
				}
				telemetry.Warn("generation.invalid_response", with(fields, invalid))
				return Response{}, perr
			}
			resp.Attempts = attempt + 1
			telemetry.Info("generation.complete", with(fields, map[string]any{
				"attempts":           resp.Attempts,
				"questions_returned": len(resp.Questions),
			}))
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, fmt.Errorf("generate: %w", ctxErr)
		}
		if !IsTransient(err) {
			return Response{}, fmt.Errorf("%w: %w", errs.ErrGenerationService, err)
		}
		lastErr = err
	}

	return Response{}, fmt.Errorf("%w: gave up after %d attempts: %w", errs.ErrGenerationService, c.MaxRetries+1, lastErr)
}

func (c *Client) callOnce(ctx context.Context, prompt Prompt) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := c.Backend.Complete(attemptCtx, prompt)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("attempt exceeded %s: %w", timeout, context.DeadlineExceeded)
	}
	return raw, err
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func with(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var _ Generator = (*Client)(nil)
