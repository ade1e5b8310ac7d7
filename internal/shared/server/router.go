package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"studyvault-backend/internal/shared/config"
	"studyvault-backend/internal/shared/metrics"
	"studyvault-backend/internal/shared/server/middleware"
	"studyvault-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to a router group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// AuthRegistrar additionally exposes unauthenticated routes.
type AuthRegistrar interface {
	RouteRegistrar
	RegisterAuthRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config          config.Config
	UsersHandler    AuthRegistrar
	SubjectsHandler RouteRegistrar
	DocumentHandler RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		cors.New(corsConfig(deps.Config.CORSAllowOrigin)),
		middleware.Auth(),
		middleware.RateLimit(rateLimitConfig()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterAuthRoutes(api)
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.SubjectsHandler != nil {
		deps.SubjectsHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}

	r.GET("/metrics", metrics.Handler())

	return r
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = allowOrigins
	return cfg
}

func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"AUTH":    {Rate: 1, Burst: 10},
			"UPLOAD":  {Rate: 2, Burst: 5},
			"DEFAULT": {Rate: 20, Burst: 40},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			switch {
			case strings.HasPrefix(path, "/api/v1/auth/"):
				return "AUTH"
			case c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/documents"):
				return "UPLOAD"
			default:
				return "DEFAULT"
			}
		},
	}
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
