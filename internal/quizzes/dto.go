package quizzes

import "time"

// QuestionView is the JSON form of a question.
type QuestionView struct {
	ID           string   `json:"id"`
	Position     int      `json:"position"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// QuizView is the JSON form of a quiz.
type QuizView struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	ModuleID         string         `json:"moduleId,omitempty"`
	SourceDocumentID string         `json:"sourceDocumentId"`
	SourceFileName   string         `json:"sourceFileName"`
	QuestionCount    int            `json:"questionCount"`
	Questions        []QuestionView `json:"questions"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// ToView renders a quiz. The answer key and explanations are included only
// when withAnswers is set.
func ToView(q Quiz, withAnswers bool) QuizView {
	view := QuizView{
		ID:               q.ID,
		Title:            q.Title,
		ModuleID:         q.ModuleID,
		SourceDocumentID: q.SourceDocumentID,
		SourceFileName:   q.SourceFileName,
		QuestionCount:    len(q.Questions),
		Questions:        make([]QuestionView, len(q.Questions)),
		CreatedAt:        q.CreatedAt,
	}
	for i, question := range q.Questions {
		qv := QuestionView{
			ID:       question.ID,
			Position: question.Position,
			Prompt:   question.Prompt,
			Options:  question.Options,
		}
		if withAnswers {
			idx := question.CorrectIndex
			qv.CorrectIndex = &idx
			qv.Explanation = question.Explanation
		}
		view.Questions[i] = qv
	}
	return view
}
