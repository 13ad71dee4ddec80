package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"assessment-backend/internal/shared/errs"
)

const responseSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "title": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["prompt", "options", "correctIndex"],
        "properties": {
          "prompt": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 2,
            "uniqueItems": true,
            "items": {"type": "string", "minLength": 1}
          },
          "correctIndex": {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	})
	return compiledSchema, schemaErr
}

type wireResponse struct {
	Title     string         `json:"title"`
	Questions []wireQuestion `json:"questions"`
}

type wireQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex float64  `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Parse validates a raw model reply and returns at most want questions.
// Any structural or referential problem yields ErrSchemaValidation.
func Parse(raw string, want int) (Response, error) {
	body := stripFences(raw)
	if body == "" {
		return Response{}, fmt.Errorf("%w: empty response", errs.ErrSchemaValidation)
	}

	schema, err := loadSchema()
	if err != nil {
		return Response{}, fmt.Errorf("load response schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: response is not JSON", errs.ErrSchemaValidation)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.Field()+": "+e.Type())
		}
		return Response{}, fmt.Errorf("%w: %s", errs.ErrSchemaValidation, strings.Join(problems, "; "))
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return Response{}, fmt.Errorf("%w: response does not decode", errs.ErrSchemaValidation)
	}

	questions := make([]Question, 0, len(wire.Questions))
	for i, wq := range wire.Questions {
		q := Question{
			Prompt:       strings.TrimSpace(wq.Prompt),
			Options:      make([]string, len(wq.Options)),
			CorrectIndex: int(wq.CorrectIndex),
			Explanation:  strings.TrimSpace(wq.Explanation),
		}
		for j, opt := range wq.Options {
			q.Options[j] = strings.TrimSpace(opt)
		}
		if err := ValidateQuestion(q); err != nil {
			return Response{}, &InvalidQuestionError{Index: i, Err: err}
		}
		questions = append(questions, q)
	}

	if want > 0 && len(questions) > want {
		questions = questions[:want]
	}

	return Response{
		Title:     strings.TrimSpace(wire.Title),
		Questions: questions,
		Raw:       raw,
	}, nil
}

// InvalidQuestionError locates the first reply question that failed
// validation. Its message never quotes model text.
type InvalidQuestionError struct {
	Index int
	Err   error
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index, e.Err)
}

func (e *InvalidQuestionError) Unwrap() error { return e.Err }

// ValidateQuestion checks the invariants a stored question must hold.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: blank prompt", errs.ErrSchemaValidation)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %d options, need at least 2", errs.ErrSchemaValidation, len(q.Options))
	}
	seen := make(map[string]int, len(q.Options))
	for i, opt := range q.Options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if key == "" {
			return fmt.Errorf("%w: option %d is blank", errs.ErrSchemaValidation, i)
		}
		if first, dup := seen[key]; dup {
			return fmt.Errorf("%w: option %d duplicates option %d", errs.ErrSchemaValidation, i, first)
		}
		seen[key] = i
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correctIndex %d out of range for %d options", errs.ErrSchemaValidation, q.CorrectIndex, len(q.Options))
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
