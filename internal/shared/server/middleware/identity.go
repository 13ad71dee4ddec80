package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/identity"
	"assessment-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	isGuestKey  = "isGuest"
	providerKey = "authProvider"
)

// Identity resolves the caller and stores the normalized user ID in context.
// Requests without usable credentials are rejected.
func Identity(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		id, err := resolver.Resolve(c.Request)
		if err != nil {
			msg := "missing or invalid credentials"
			if errors.Is(err, identity.ErrNoCredentials) {
				msg = "Missing identity"
			}
			respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", msg, nil)
			return
		}

		c.Set(userIDKey, id.UserID)
		c.Set(isGuestKey, id.Guest)
		c.Set(providerKey, id.Provider)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// ProviderFromContext fetches the identity provider set by the identity middleware.
func ProviderFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(providerKey)
}

// IsGuest reports whether the caller was identified as a guest.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}
