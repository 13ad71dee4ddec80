package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/attempts"
	"assessment-backend/internal/identity"
	"assessment-backend/internal/pipeline"
	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/services/health"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers and shared services the router mounts.
type RouterDeps struct {
	Config          config.Config
	Resolver        identity.Resolver
	Health          *health.Service
	PipelineHandler *pipeline.Handler
	QuizHandler     *quizzes.Handler
	AttemptHandler  *attempts.Handler
	Limiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		ok, checks := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	})

	authed := api.Group("")
	authed.Use(
		middleware.Identity(deps.Resolver),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.GenerateRateLimitGroup: {
					Rate:  deps.Config.RateLimitGenerateRate,
					Burst: deps.Config.RateLimitGenerateBurst,
				},
				"DEFAULT": {
					Rate:  deps.Config.RateLimitDefaultRate,
					Burst: deps.Config.RateLimitDefaultBurst,
				},
			},
			GroupFor: rateLimitGroup,
			Limiter:  deps.Limiter,
		}),
	)
	registerMeRoutes(authed)
	if deps.PipelineHandler != nil {
		deps.PipelineHandler.RegisterRoutes(authed)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.RegisterRoutes(authed)
	}
	if deps.AttemptHandler != nil {
		deps.AttemptHandler.RegisterRoutes(authed)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/quizzes" {
		return middleware.GenerateRateLimitGroup
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
