package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	a := Attempt{
		ID:             "attempt-1",
		QuizID:         quizID,
		UserID:         "local:ada",
		Answers:        []Answer{{QuestionID: "q-00", SelectedIndex: 2}},
		CorrectCount:   0,
		TotalQuestions: 20,
		Score:          0,
		CreatedAt:      time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO quiz_attempts").
		WithArgs(a.ID, a.QuizID, a.UserID, `[{"questionId":"q-00","selectedIndex":2}]`, 0, 20, 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := (&PGRepo{DB: db}).Insert(context.Background(), a); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

// The summary is one grouped query; nothing else may hit the database.
func TestPGRepoSummarizeIsSingleGroupedQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\),\s+MAX\(score\),\s+AVG\(score\),\s+\(ARRAY_AGG\(score ORDER BY created_at DESC, id DESC\)\)\[1\]\s+FROM quiz_attempts\s+WHERE quiz_id = \$1 AND user_id = \$2\s+GROUP BY quiz_id, user_id`).
		WithArgs(quizID, "local:ada").
		WillReturnRows(sqlmock.NewRows([]string{"count", "max", "avg", "latest"}).AddRow(3, 90.0, 75.0, 75.0))

	got, err := (&PGRepo{DB: db}).Summarize(context.Background(), quizID, "local:ada")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.AttemptCount != 3 || got.BestScore != 90 || got.AverageScore != 75 || got.LatestScore != 75 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSummarizeNoRowsIsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM quiz_attempts").
		WillReturnRows(sqlmock.NewRows([]string{"count", "max", "avg", "latest"}))

	got, err := (&PGRepo{DB: db}).Summarize(context.Background(), quizID, "local:ada")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.AttemptCount != 0 || got.QuizID != quizID {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}
