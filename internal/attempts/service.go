package attempts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/telemetry"
)

// Service records scored attempts and summarizes them.
type Service struct {
	Quizzes quizzes.Repo
	Repo    Repo
	Now     func() time.Time
}

// NewService constructs a Service.
func NewService(quizRepo quizzes.Repo, repo Repo) *Service {
	return &Service{Quizzes: quizRepo, Repo: repo, Now: time.Now}
}

// Record scores answers against the quiz's answer key and stores the
// attempt. Unanswered questions count as incorrect.
func (s *Service) Record(ctx context.Context, quizID, userID string, answers []Answer) (Attempt, error) {
	quizID = strings.TrimSpace(quizID)
	userID = strings.TrimSpace(userID)
	if quizID == "" || userID == "" {
		return Attempt{}, fmt.Errorf("%w: quiz and user are required", errs.ErrValidation)
	}

	quiz, err := s.Quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errs.Code(err) == errs.CodeNotFound || errs.Code(err) == errs.CodeCanceled {
			return Attempt{}, fmt.Errorf("load quiz %s: %w", quizID, err)
		}
		return Attempt{}, fmt.Errorf("%w: load quiz %s: %w", errs.ErrPersistence, quizID, err)
	}

	correct, err := Score(quiz, answers)
	if err != nil {
		return Attempt{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	total := len(quiz.Questions)
	attempt := Attempt{
		ID:             uuid.NewString(),
		QuizID:         quiz.ID,
		UserID:         userID,
		Answers:        append([]Answer(nil), answers...),
		CorrectCount:   correct,
		TotalQuestions: total,
		Score:          float64(correct) * 100 / float64(total),
		CreatedAt:      now().UTC(),
	}
	if err := s.Repo.Insert(ctx, attempt); err != nil {
		return Attempt{}, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}

	metrics.IncAttemptRecorded()
	telemetry.Info("attempt.recorded", map[string]any{
		"attempt_id": attempt.ID,
		"quiz_id":    attempt.QuizID,
		"user_id":    attempt.UserID,
		"correct":    attempt.CorrectCount,
		"total":      attempt.TotalQuestions,
	})
	return attempt, nil
}

// Score counts correct answers. Answers must reference distinct questions of
// the quiz and select an existing option.
func Score(quiz quizzes.Quiz, answers []Answer) (int, error) {
	if len(quiz.Questions) == 0 {
		return 0, fmt.Errorf("%w: quiz %s has no questions", errs.ErrValidation, quiz.ID)
	}
	seen := make(map[string]struct{}, len(answers))
	correct := 0
	for _, a := range answers {
		q, ok := quiz.Question(a.QuestionID)
		if !ok {
			return 0, fmt.Errorf("%w: question %q is not part of quiz %s", errs.ErrValidation, a.QuestionID, quiz.ID)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return 0, fmt.Errorf("%w: question %q answered more than once", errs.ErrValidation, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
		if a.SelectedIndex < 0 || a.SelectedIndex >= len(q.Options) {
			return 0, fmt.Errorf("%w: selected index %d out of range for question %q", errs.ErrValidation, a.SelectedIndex, a.QuestionID)
		}
		if a.SelectedIndex == q.CorrectIndex {
			correct++
		}
	}
	return correct, nil
}

// Summarize returns the aggregate for one (quiz, user) pair.
func (s *Service) Summarize(ctx context.Context, quizID, userID string) (Summary, error) {
	quizID = strings.TrimSpace(quizID)
	userID = strings.TrimSpace(userID)
	if quizID == "" || userID == "" {
		return Summary{}, fmt.Errorf("%w: quiz and user are required", errs.ErrValidation)
	}
	summary, err := s.Repo.Summarize(ctx, quizID, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	return summary, nil
}
