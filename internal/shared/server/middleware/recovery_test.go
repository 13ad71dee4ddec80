package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"assessment-backend/internal/shared/telemetry"
)

func TestRecoveryReturnsInternalError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	defer telemetry.SetLogger(zap.New(core))()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/quizzes/:quizId", func(c *gin.Context) {
		panic("nil map write")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/quizzes/q-1", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("expected INTERNAL_ERROR body, got %s", resp.Body.String())
	}
	panics := logs.FilterMessage("http.panic").All()
	if len(panics) != 1 {
		t.Fatalf("expected one panic log, got %d", len(panics))
	}
	if got := panics[0].ContextMap()["quiz_id"]; got != "q-1" {
		t.Fatalf("expected quiz_id in panic log, got %v", got)
	}
}
