package attempts

import "time"

// Answer is the option a user selected for one question.
type Answer struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
}

// Attempt is one immutable, scored submission of a quiz.
type Attempt struct {
	ID             string
	QuizID         string
	UserID         string
	Answers        []Answer
	CorrectCount   int
	TotalQuestions int
	Score          float64
	CreatedAt      time.Time
}

// Summary aggregates every attempt one user made on one quiz. A pair with
// no attempts has a zero summary.
type Summary struct {
	QuizID       string
	UserID       string
	AttemptCount int
	BestScore    float64
	LatestScore  float64
	AverageScore float64
}
