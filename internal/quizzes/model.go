package quizzes

import "time"

// Quiz is a committed set of questions generated from one document.
type Quiz struct {
	ID               string
	OwnerID          string
	ModuleID         string
	SourceDocumentID string
	SourceFileName   string
	Title            string
	Questions        []Question
	CreatedAt        time.Time
}

// Question is one multiple-choice question of a quiz.
type Question struct {
	ID           string
	QuizID       string
	Position     int
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
}

// Question returns the question with the given ID.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}
