package quizzes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-backend/internal/generation"
	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/uploads"
)

// Options carries caller-supplied quiz attributes.
type Options struct {
	ModuleID string
}

// Assembler turns a validated generation response into a committed quiz.
type Assembler struct {
	Repo Repo
	Now  func() time.Time
}

// NewAssembler constructs an Assembler.
func NewAssembler(repo Repo) *Assembler {
	return &Assembler{Repo: repo, Now: time.Now}
}

// Assemble re-checks every question, builds the quiz and commits it in one
// store operation. Invalid input returns ErrSchemaValidation before the
// store is touched; store failures return ErrPersistence.
func (a *Assembler) Assemble(ctx context.Context, doc *uploads.Document, resp generation.Response, opts Options) (Quiz, error) {
	if doc == nil {
		return Quiz{}, fmt.Errorf("%w: source document is required", errs.ErrValidation)
	}
	if len(resp.Questions) == 0 {
		return Quiz{}, fmt.Errorf("%w: quiz has no questions", errs.ErrSchemaValidation)
	}
	for i, q := range resp.Questions {
		if err := generation.ValidateQuestion(q); err != nil {
			return Quiz{}, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	quiz := Quiz{
		ID:               uuid.NewString(),
		OwnerID:          doc.OwnerID,
		ModuleID:         strings.TrimSpace(opts.ModuleID),
		SourceDocumentID: doc.ID,
		SourceFileName:   doc.FileName,
		Title:            quizTitle(resp.Title, doc.FileName),
		CreatedAt:        now().UTC(),
	}
	quiz.Questions = make([]Question, len(resp.Questions))
	for i, q := range resp.Questions {
		quiz.Questions[i] = Question{
			ID:           uuid.NewString(),
			QuizID:       quiz.ID,
			Position:     i,
			Prompt:       q.Prompt,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
	}

	if err := a.Repo.Create(ctx, quiz); err != nil {
		return Quiz{}, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	return quiz, nil
}

func quizTitle(title, fileName string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if base == "" {
		return "Quiz"
	}
	return base
}
