package attempts

import "context"

// Repo stores attempts append-only and aggregates them per (quiz, user).
type Repo interface {
	Insert(ctx context.Context, a Attempt) error
	Summarize(ctx context.Context, quizID, userID string) (Summary, error)
}
