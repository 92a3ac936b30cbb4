// Package httpapi wires the REST handlers into a gin engine.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"animehub/internal/config"
	"animehub/internal/microservices/http-api/handler"
	"animehub/internal/microservices/http-api/middleware"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles everything the handlers depend on.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Anime      service.AnimeService
	Feed       service.FeedService
	Moderation service.ModerationService
	Stats      service.StatsService
}

// Pinger reports store liveness for the health endpoint.
type Pinger func(ctx context.Context) error

func NewRouter(cfg *config.Config, svc Services, ping Pinger, logger *slog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg)))

	api := r.Group("/api")
	api.GET("/health", healthHandler(ping))

	authMW := middleware.AuthMiddleware(svc.Auth, logger)

	handler.NewAuthHandler(svc.Auth, logger).RegisterRoutes(api)
	handler.NewAnimeHandler(svc.Anime, svc.Feed, logger).RegisterRoutes(api, authMW)
	handler.NewUserHandler(svc.Users, logger).RegisterRoutes(api, authMW)
	handler.NewAdminHandler(svc.Moderation, svc.Stats, svc.Users, logger).
		RegisterRoutes(api, authMW, middleware.RequireAdmin())

	return r
}

// corsConfig allows any origin in development and CORS_ORIGINS otherwise.
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	c.MaxAge = 12 * time.Hour
	if cfg.IsDevelopment() || len(cfg.CORSOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}

func healthHandler(ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
	}
}
