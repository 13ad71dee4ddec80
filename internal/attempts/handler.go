package attempts

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

// Handler wires attempt routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches attempt routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quizzes/:quizId/attempts", h.record)
	rg.GET("/quizzes/:quizId/summary", h.summary)
}

type recordRequest struct {
	Answers []Answer `json:"answers"`
}

type attemptResponse struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
	Score          float64   `json:"score"`
	CreatedAt      time.Time `json:"createdAt"`
}

type summaryResponse struct {
	QuizID       string  `json:"quizId"`
	AttemptCount int     `json:"attemptCount"`
	BestScore    float64 `json:"bestScore"`
	LatestScore  float64 `json:"latestScore"`
	AverageScore float64 `json:"averageScore"`
}

func (h *Handler) record(c *gin.Context) {
	quizID := c.Param("quizId")
	if _, err := uuid.Parse(quizID); err != nil {
		respond.Fault(c, errs.ErrNotFound)
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, errs.CodeValidation, "invalid request body", nil)
		return
	}

	attempt, err := h.Svc.Record(c.Request.Context(), quizID, middleware.UserIDFromContext(c), req.Answers)
	if err != nil {
		respond.Fault(c, err)
		return
	}

	respond.Created(c, attemptResponse{
		ID:             attempt.ID,
		QuizID:         attempt.QuizID,
		CorrectCount:   attempt.CorrectCount,
		TotalQuestions: attempt.TotalQuestions,
		Score:          attempt.Score,
		CreatedAt:      attempt.CreatedAt,
	})
}

func (h *Handler) summary(c *gin.Context) {
	quizID := c.Param("quizId")
	if _, err := uuid.Parse(quizID); err != nil {
		respond.Fault(c, errs.ErrNotFound)
		return
	}

	summary, err := h.Svc.Summarize(c.Request.Context(), quizID, middleware.UserIDFromContext(c))
	if err != nil {
		respond.Fault(c, err)
		return
	}

	respond.OK(c, summaryResponse{
		QuizID:       summary.QuizID,
		AttemptCount: summary.AttemptCount,
		BestScore:    summary.BestScore,
		LatestScore:  summary.LatestScore,
		AverageScore: summary.AverageScore,
	})
}
