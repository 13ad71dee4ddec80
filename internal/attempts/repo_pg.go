package attempts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert writes one attempt row. Rows are never updated afterwards.
func (r *PGRepo) Insert(ctx context.Context, a Attempt) error {
	answers := a.Answers
	if answers == nil {
		answers = []Answer{}
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO quiz_attempts (
    id,
    quiz_id,
    user_id,
    answers,
    correct_count,
    total_questions,
    score,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		a.ID,
		a.QuizID,
		a.UserID,
		string(payload),
		a.CorrectCount,
		a.TotalQuestions,
		a.Score,
		a.CreatedAt,
	)
	return err
}

// Summarize computes the pair's aggregate in a single grouped query served
// by idx_quiz_attempts_quiz_user_created.
func (r *PGRepo) Summarize(ctx context.Context, quizID, userID string) (Summary, error) {
	const query = `
SELECT
    COUNT(*),
    MAX(score),
    AVG(score),
    (ARRAY_AGG(score ORDER BY created_at DESC, id DESC))[1]
FROM quiz_attempts
WHERE quiz_id = $1 AND user_id = $2
GROUP BY quiz_id, user_id`

	out := Summary{QuizID: quizID, UserID: userID}
	err := r.DB.QueryRowContext(ctx, query, quizID, userID).Scan(
		&out.AttemptCount,
		&out.BestScore,
		&out.AverageScore,
		&out.LatestScore,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{QuizID: quizID, UserID: userID}, nil
		}
		return Summary{}, err
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
