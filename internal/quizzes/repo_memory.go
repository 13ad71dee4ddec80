package quizzes

import (
	"context"
	"fmt"
	"sync"

	"assessment-backend/internal/shared/errs"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Quiz
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Quiz)}
}

// Create stores the quiz under a single lock.
func (r *MemoryRepo) Create(ctx context.Context, quiz Quiz) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("quiz %s has no questions", quiz.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[quiz.ID]; exists {
		return fmt.Errorf("quiz %s already exists", quiz.ID)
	}
	r.data[quiz.ID] = cloneQuiz(quiz)
	return nil
}

// GetByID returns a copy of a stored quiz.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Quiz, error) {
	if err := ctx.Err(); err != nil {
		return Quiz{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.data[id]
	if !ok {
		return Quiz{}, errs.ErrNotFound
	}
	return cloneQuiz(quiz), nil
}

// Count returns the number of stored quizzes.
func (r *MemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func cloneQuiz(q Quiz) Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		out.Questions[i] = question
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
