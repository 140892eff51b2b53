package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"user-backend/internal/classifications"
	"user-backend/internal/shared/config"
	"user-backend/internal/shared/metrics"
	"user-backend/internal/shared/server/middleware"
	"user-backend/internal/shared/server/respond"
	"user-backend/internal/users"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Config                config.Config
	DB                    *sql.DB
	Limiter               middleware.Limiter
	UserHandler           *users.Handler
	ClassificationHandler *classifications.Handler
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
		middleware.RateLimit(deps.Limiter),
		middleware.Auth(deps.Config.AuthRequired),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthCheck(deps.DB))
	deps.UserHandler.RegisterRoutes(api)
	deps.ClassificationHandler.RegisterRoutes(api)

	return r
}

func healthCheck(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"ok": true}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false, "db": "unreachable"})
				return
			}
			body["db"] = "ok"
		}
		respond.OK(c, body)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
