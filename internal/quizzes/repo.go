package quizzes

import "context"

// Repo persists quizzes. Create stores a quiz and all of its questions
// atomically: either everything is visible afterwards or nothing is.
type Repo interface {
	Create(ctx context.Context, quiz Quiz) error
	GetByID(ctx context.Context, id string) (Quiz, error)
}
