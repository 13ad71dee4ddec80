package quizzes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/server/respond"
)

// Handler serves committed quizzes.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches quiz read routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quizzes/:quizId", h.get)
}

func (h *Handler) get(c *gin.Context) {
	quizID := c.Param("quizId")
	if _, err := uuid.Parse(quizID); err != nil {
		respond.Fault(c, errs.ErrNotFound)
		return
	}
	quiz, err := h.Repo.GetByID(c.Request.Context(), quizID)
	if err != nil {
		respond.Fault(c, err)
		return
	}
	respond.OK(c, ToView(quiz, false))
}
