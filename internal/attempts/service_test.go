package attempts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/shared/errs"
)

const quizID = "5b0f6c3e-8d5a-4a57-9a43-0e5e6f3c1d10"

// twentyQuestionQuiz has option 0 correct for every question.
func twentyQuestionQuiz() quizzes.Quiz {
	q := quizzes.Quiz{ID: quizID, OwnerID: "local:1", Title: "Geography"}
	for i := 0; i < 20; i++ {
		q.Questions = append(q.Questions, quizzes.Question{
			ID:           fmt.Sprintf("q-%02d", i),
			QuizID:       quizID,
			Position:     i,
			Prompt:       fmt.Sprintf("Question %d", i),
			Options:      []string{"right", "wrong", "also wrong"},
			CorrectIndex: 0,
		})
	}
	return q
}

// answersWithCorrect answers every question, the first n correctly.
func answersWithCorrect(n int) []Answer {
	out := make([]Answer, 20)
	for i := range out {
		sel := 1
		if i < n {
			sel = 0
		}
		out[i] = Answer{QuestionID: fmt.Sprintf("q-%02d", i), SelectedIndex: sel}
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newService(t *testing.T) *Service {
	t.Helper()
	quizRepo := quizzes.NewMemoryRepo()
	if err := quizRepo.Create(context.Background(), twentyQuestionQuiz()); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	svc := NewService(quizRepo, NewMemoryRepo())
	c := &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	svc.Now = c.Now
	return svc
}

func TestSummarizeThreeAttempts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, correct := range []int{12, 18, 15} {
		if _, err := svc.Record(ctx, quizID, "local:ada", answersWithCorrect(correct)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := svc.Summarize(ctx, quizID, "local:ada")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.AttemptCount != 3 || got.BestScore != 90 || got.AverageScore != 75 || got.LatestScore != 75 {
		t.Fatalf("unexpected summary: %+v", got)
	}

	other, err := svc.Summarize(ctx, quizID, "local:bob")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if other.AttemptCount != 0 || other.BestScore != 0 {
		t.Fatalf("expected zero summary for user without attempts, got %+v", other)
	}
}

func TestRecordScoresUnansweredAsWrong(t *testing.T) {
	svc := newService(t)
	attempt, err := svc.Record(context.Background(), quizID, "guest:x", []Answer{
		{QuestionID: "q-00", SelectedIndex: 0},
		{QuestionID: "q-01", SelectedIndex: 2},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if attempt.CorrectCount != 1 || attempt.TotalQuestions != 20 || attempt.Score != 5 {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
}

func TestRecordRejectsInvalidAnswers(t *testing.T) {
	tests := []struct {
		name    string
		quizID  string
		userID  string
		answers []Answer
		wantErr error
	}{
		{name: "unknown quiz", quizID: "7d444840-9dc0-11d1-b245-5ffdce74fad2", userID: "u", wantErr: errs.ErrNotFound},
		{name: "missing user", quizID: quizID, userID: " ", wantErr: errs.ErrValidation},
		{name: "foreign question", quizID: quizID, userID: "u", answers: []Answer{{QuestionID: "other", SelectedIndex: 0}}, wantErr: errs.ErrValidation},
		{name: "index out of range", quizID: quizID, userID: "u", answers: []Answer{{QuestionID: "q-00", SelectedIndex: 3}}, wantErr: errs.ErrValidation},
		{name: "negative index", quizID: quizID, userID: "u", answers: []Answer{{QuestionID: "q-00", SelectedIndex: -1}}, wantErr: errs.ErrValidation},
		{name: "answered twice", quizID: quizID, userID: "u", answers: []Answer{{QuestionID: "q-00", SelectedIndex: 0}, {QuestionID: "q-00", SelectedIndex: 1}}, wantErr: errs.ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			_, err := svc.Record(context.Background(), tt.quizID, tt.userID, tt.answers)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			s, err := svc.Summarize(context.Background(), quizID, "u")
			if err != nil {
				t.Fatalf("Summarize: %v", err)
			}
			if s.AttemptCount != 0 {
				t.Fatalf("rejected attempt was stored")
			}
		})
	}
}

type failingRepo struct{ err error }

func (f failingRepo) Insert(context.Context, Attempt) error { return f.err }
func (f failingRepo) Summarize(context.Context, string, string) (Summary, error) {
	return Summary{}, f.err
}

func TestStoreFailuresArePersistenceErrors(t *testing.T) {
	svc := newService(t)
	boom := errors.New("disk full")
	svc.Repo = failingRepo{err: boom}

	if _, err := svc.Record(context.Background(), quizID, "u", answersWithCorrect(3)); !errors.Is(err, errs.ErrPersistence) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrPersistence wrapping cause, got %v", err)
	}
	if _, err := svc.Summarize(context.Background(), quizID, "u"); !errors.Is(err, errs.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestConcurrentRecordsAreAllCounted(t *testing.T) {
	svc := newService(t)
	const n = 50

	var g errgroup.Group
	for i := 0; i < n; i++ {
		correct := i % 21
		g.Go(func() error {
			_, err := svc.Record(context.Background(), quizID, "local:ada", answersWithCorrect(correct))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := svc.Summarize(context.Background(), quizID, "local:ada")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.AttemptCount != n {
		t.Fatalf("expected %d attempts, got %d", n, got.AttemptCount)
	}
	if got.BestScore != 100 {
		t.Fatalf("expected best 100, got %v", got.BestScore)
	}
}
