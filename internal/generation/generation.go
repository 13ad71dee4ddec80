package generation

import "context"

// Request asks for a quiz built from extracted document text.
type Request struct {
	DocumentID    string
	Text          string
	QuestionCount int
}

// Question is one validated multiple-choice question.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Response is a schema-checked generation result.
type Response struct {
	Title     string
	Questions []Question
	Raw       string
	Attempts  int
}

// Generator produces quiz questions from text.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Prompt is the provider-neutral chat prompt.
type Prompt struct {
	System string
	User   string
}

// Backend performs a single call to a model provider and returns the raw
// text of the reply. Retries and validation live in Client.
type Backend interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	Name() string
}
