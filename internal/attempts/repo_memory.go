package attempts

import (
	"context"
	"fmt"
	"sync"
)

type pairKey struct {
	quizID string
	userID string
}

// MemoryRepo is an in-memory implementation of Repo. Attempts are
// partitioned by (quiz, user) so a summary only touches that pair.
type MemoryRepo struct {
	mu   sync.RWMutex
	ids  map[string]struct{}
	data map[pairKey][]Attempt
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		ids:  make(map[string]struct{}),
		data: make(map[pairKey][]Attempt),
	}
}

// Insert appends an attempt.
func (r *MemoryRepo) Insert(ctx context.Context, a Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ids[a.ID]; exists {
		return fmt.Errorf("attempt %s already exists", a.ID)
	}
	a.Answers = append([]Answer(nil), a.Answers...)
	key := pairKey{quizID: a.QuizID, userID: a.UserID}
	r.ids[a.ID] = struct{}{}
	r.data[key] = append(r.data[key], a)
	return nil
}

// Summarize aggregates the pair's partition in one pass.
func (r *MemoryRepo) Summarize(ctx context.Context, quizID, userID string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := Summary{QuizID: quizID, UserID: userID}
	var (
		sum    float64
		latest *Attempt
	)
	rows := r.data[pairKey{quizID: quizID, userID: userID}]
	for i := range rows {
		a := &rows[i]
		if out.AttemptCount == 0 || a.Score > out.BestScore {
			out.BestScore = a.Score
		}
		out.AttemptCount++
		sum += a.Score
		if latest == nil || newer(a, latest) {
			latest = a
		}
	}
	if out.AttemptCount > 0 {
		out.AverageScore = sum / float64(out.AttemptCount)
		out.LatestScore = latest.Score
	}
	return out, nil
}

// newer orders by creation time, then ID, both descending.
func newer(a, b *Attempt) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

var _ Repo = (*MemoryRepo)(nil)
