package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/server/respond"
	"assessment-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR. If the handler
// already started writing, the connection is only aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"quiz_id":    c.Param("quizId"),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, errs.CodeInternal, "Unexpected server error", nil)
		}()
		c.Next()
	}
}
