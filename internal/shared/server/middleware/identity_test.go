package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/identity"
)

func TestIdentityAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity(identity.Chain{identity.GuestResolver{}}))
	router.OPTIONS("/api/v1/quizzes/:quizId", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/quizzes/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestIdentityStoresNormalizedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity(identity.Chain{identity.GuestResolver{}}))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserIDFromContext(c), "guest": IsGuest(c), "provider": ProviderFromContext(c)})
	})

	tests := []struct {
		name     string
		guestID  string
		wantCode int
		wantBody string
	}{
		{name: "guest", guestID: "device-7", wantCode: http.StatusOK, wantBody: `{"guest":true,"provider":"guest","user":"guest:device-7"}`},
		{name: "missing", guestID: "", wantCode: http.StatusUnauthorized},
		{name: "malformed", guestID: "a:b", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.guestID != "" {
				req.Header.Set(identity.GuestHeader, tt.guestID)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.Code)
			}
			if tt.wantBody != "" && resp.Body.String() != tt.wantBody {
				t.Fatalf("unexpected body %s", resp.Body.String())
			}
		})
	}
}
