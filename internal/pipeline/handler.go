package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

// multipartOverhead covers form boundaries and the small text fields.
const multipartOverhead = 1 << 20

// Handler wires the quiz generation endpoint to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the generation route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quizzes", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.Uploads.MaxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Fault(c, fmt.Errorf("%w: file exceeds %d bytes", errs.ErrValidation, h.Svc.Uploads.MaxBytes))
			return
		}
		respond.Fault(c, fmt.Errorf("%w: file is required", errs.ErrValidation))
		return
	}

	count := 0
	if raw := strings.TrimSpace(c.PostForm("questionCount")); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			respond.Fault(c, fmt.Errorf("%w: questionCount must be an integer", errs.ErrValidation))
			return
		}
		if count == 0 {
			respond.Fault(c, fmt.Errorf("%w: questionCount must be positive", errs.ErrValidation))
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Fault(c, fmt.Errorf("%w: unable to read file", errs.ErrValidation))
		return
	}
	defer file.Close()

	quiz, err := h.Svc.GenerateQuiz(c.Request.Context(), GenerateInput{
		OwnerID:       middleware.UserIDFromContext(c),
		FileName:      fileHeader.Filename,
		MediaType:     fileHeader.Header.Get("Content-Type"),
		SizeBytes:     fileHeader.Size,
		Body:          file,
		QuestionCount: count,
		ModuleID:      c.PostForm("moduleId"),
	})
	if err != nil {
		respond.Fault(c, err)
		return
	}

	c.Set("quizId", quiz.ID)
	c.Set("documentId", quiz.SourceDocumentID)
	respond.Created(c, quizzes.ToView(quiz, true))
}
