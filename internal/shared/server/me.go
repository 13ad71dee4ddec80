package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"userId":   userID,
		"provider": middleware.ProviderFromContext(c),
		"isGuest":  middleware.IsGuest(c),
	})
}
