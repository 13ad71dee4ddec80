package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"assessment-backend/internal/extract"
	"assessment-backend/internal/generation"
	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/telemetry"
	"assessment-backend/internal/uploads"
)

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 20
)

// GenerateInput is one request to turn an uploaded document into a quiz.
type GenerateInput struct {
	OwnerID   string
	FileName  string
	MediaType string
	// SizeBytes is the declared size; negative when unknown.
	SizeBytes     int64
	Body          io.Reader
	QuestionCount int
	ModuleID      string
}

// Service runs upload, extraction, generation and assembly in order.
type Service struct {
	Uploads      *uploads.Manager
	Extractor    *extract.Extractor
	Generator    generation.Generator
	Assembler    *quizzes.Assembler
	DefaultCount int
	MaxCount     int
}

// GenerateQuiz produces and commits a quiz from one upload. The upload is
// released on every exit path, and no quiz is stored unless every step
// succeeds.
func (s *Service) GenerateQuiz(ctx context.Context, in GenerateInput) (quizzes.Quiz, error) {
	count, err := s.questionCount(in.QuestionCount)
	if err != nil {
		return quizzes.Quiz{}, err
	}

	metrics.IncGenerationStarted()
	start := time.Now()
	fields := map[string]any{
		"owner_id":  in.OwnerID,
		"module_id": in.ModuleID,
		"questions": count,
	}

	var (
		quiz      quizzes.Quiz
		committed bool
	)
	err = s.Uploads.With(ctx, uploads.AcquireInput{
		OwnerID:   in.OwnerID,
		FileName:  in.FileName,
		MediaType: in.MediaType,
		SizeBytes: in.SizeBytes,
		Body:      in.Body,
	}, func(ctx context.Context, doc *uploads.Document) error {
		fields["document_id"] = doc.ID
		fields["media_type"] = doc.MediaType

		content, err := s.Extractor.Extract(ctx, doc)
		if err != nil {
			return err
		}

		resp, err := s.Generator.Generate(ctx, generation.Request{
			DocumentID:    doc.ID,
			Text:          content.Text,
			QuestionCount: count,
		})
		if err != nil {
			return err
		}

		quiz, err = s.Assembler.Assemble(ctx, doc, resp, quizzes.Options{ModuleID: in.ModuleID})
		committed = err == nil
		return err
	})
	elapsed := time.Since(start)
	fields["duration_ms"] = elapsed.Milliseconds()

	// The quiz is already committed; a stuck upload is left to the store sweep.
	if committed && errors.Is(err, uploads.ErrReleaseFailed) {
		telemetry.Error("quiz.generated.upload_leaked", with(fields, "quiz_id", quiz.ID))
		err = nil
	}

	if err != nil {
		code := errs.Code(err)
		metrics.IncGenerationFailed(code)
		fields["code"] = code
		telemetry.Warn("quiz.generation.failed", fields)
		return quizzes.Quiz{}, err
	}

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(elapsed.Milliseconds()))
	fields["quiz_id"] = quiz.ID
	fields["questions_committed"] = len(quiz.Questions)
	telemetry.Info("quiz.generated", fields)
	return quiz, nil
}

func (s *Service) questionCount(requested int) (int, error) {
	def := s.DefaultCount
	if def <= 0 {
		def = DefaultQuestionCount
	}
	max := s.MaxCount
	if max <= 0 {
		max = MaxQuestionCount
	}
	if requested == 0 {
		requested = def
	}
	if requested < 1 || requested > max {
		return 0, fmt.Errorf("%w: questionCount must be between 1 and %d", errs.ErrValidation, max)
	}
	return requested, nil
}

func with(fields map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
