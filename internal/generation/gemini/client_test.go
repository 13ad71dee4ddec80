package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"assessment-backend/internal/generation"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), " ", DefaultModel); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		transient  bool
	}{
		{name: "rest 429", err: &googleapi.Error{Code: http.StatusTooManyRequests}, wantStatus: 429, transient: true},
		{name: "rest 400", err: &googleapi.Error{Code: http.StatusBadRequest}, wantStatus: 400, transient: false},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "down"), wantStatus: 503, transient: true},
		{name: "grpc exhausted", err: status.Error(codes.ResourceExhausted, "quota"), wantStatus: 429, transient: true},
		{name: "grpc deadline", err: status.Error(codes.DeadlineExceeded, "slow"), wantStatus: 504, transient: true},
		{name: "grpc invalid", err: status.Error(codes.InvalidArgument, "bad"), wantStatus: 400, transient: false},
		{name: "grpc unauthenticated", err: status.Error(codes.Unauthenticated, "key"), wantStatus: 401, transient: false},
		{name: "plain", err: errors.New("blocked: safety"), wantStatus: 0, transient: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			var se *generation.StatusError
			if tt.wantStatus == 0 {
				if errors.As(got, &se) {
					t.Fatalf("expected no status, got %d", se.StatusCode)
				}
			} else if !errors.As(got, &se) || se.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %v", tt.wantStatus, got)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("expected original error to be wrapped")
			}
			if generation.IsTransient(got) != tt.transient {
				t.Fatalf("IsTransient = %v, want %v", !tt.transient, tt.transient)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"questions":`),
				genai.Blob{MIMEType: "image/png", Data: []byte{1}},
				genai.Text(`[]}`),
			}},
		}},
	}
	if got := responseText(resp); got != `{"questions":[]}` {
		t.Fatalf("unexpected text %q", got)
	}
	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if got := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}); got != "" {
		t.Fatalf("expected empty text for nil content, got %q", got)
	}
}
