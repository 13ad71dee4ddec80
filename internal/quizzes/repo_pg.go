package quizzes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"assessment-backend/internal/shared/errs"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the quiz and its questions in one transaction.
func (r *PGRepo) Create(ctx context.Context, quiz Quiz) (err error) {
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("quiz %s has no questions", quiz.ID)
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var moduleID sql.NullString
	if quiz.ModuleID != "" {
		moduleID = sql.NullString{String: quiz.ModuleID, Valid: true}
	}
	if _, err = tx.ExecContext(ctx, `
INSERT INTO quizzes (
    id,
    owner_id,
    module_id,
    source_document_id,
    source_file_name,
    title,
    question_count,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		quiz.ID,
		quiz.OwnerID,
		moduleID,
		quiz.SourceDocumentID,
		quiz.SourceFileName,
		quiz.Title,
		len(quiz.Questions),
		quiz.CreatedAt,
	); err != nil {
		return err
	}

	const insertQuestion = `
INSERT INTO quiz_questions (id, quiz_id, position, prompt, options, correct_index, explanation)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, q := range quiz.Questions {
		var options []byte
		options, err = json.Marshal(q.Options)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, insertQuestion,
			q.ID,
			quiz.ID,
			q.Position,
			q.Prompt,
			string(options),
			q.CorrectIndex,
			q.Explanation,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID fetches a quiz with its questions ordered by position.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Quiz, error) {
	const quizQuery = `
SELECT id, owner_id, module_id, source_document_id, source_file_name, title, created_at
FROM quizzes
WHERE id = $1`
	var quiz Quiz
	var moduleID sql.NullString
	err := r.DB.QueryRowContext(ctx, quizQuery, id).Scan(
		&quiz.ID,
		&quiz.OwnerID,
		&moduleID,
		&quiz.SourceDocumentID,
		&quiz.SourceFileName,
		&quiz.Title,
		&quiz.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, errs.ErrNotFound
		}
		return Quiz{}, err
	}
	if moduleID.Valid {
		quiz.ModuleID = moduleID.String
	}

	const questionQuery = `
SELECT id, position, prompt, options, correct_index, explanation
FROM quiz_questions
WHERE quiz_id = $1
ORDER BY position ASC`
	rows, err := r.DB.QueryContext(ctx, questionQuery, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()

	for rows.Next() {
		q := Question{QuizID: quiz.ID}
		var options []byte
		if err := rows.Scan(&q.ID, &q.Position, &q.Prompt, &options, &q.CorrectIndex, &q.Explanation); err != nil {
			return Quiz{}, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return Quiz{}, fmt.Errorf("decode options for question %s: %w", q.ID, err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return Quiz{}, err
	}
	return quiz, nil
}

var _ Repo = (*PGRepo)(nil)
