package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/DhavalSuthar-24/padel/config"
	"github.com/DhavalSuthar-24/padel/internal/auth"
	"github.com/DhavalSuthar-24/padel/internal/match"
	"github.com/DhavalSuthar-24/padel/internal/message"
	"github.com/DhavalSuthar-24/padel/internal/middleware"
	"github.com/DhavalSuthar-24/padel/internal/realtime"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/DhavalSuthar-24/padel/pkg/token"
)

// Deps is everything the HTTP surface is built from.
type Deps struct {
	Config   *config.Config
	Users    user.Repository
	Messages message.Repository
	Matches  *match.Service
	Sweeper  *match.Sweeper
	Registry *realtime.Registry
	Realtime *realtime.Handler
	Verifier token.Verifier
	Logger   zerolog.Logger
}

func SetupRoutes(d Deps) *gin.Engine {
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger))
	r.Use(cors.New(corsConfig(d.Config.App.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": d.Registry.Len()})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMiddleware := middleware.AuthMiddleware(d.Verifier, d.Users)

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, d.Users, d.Config.JWT.AccessTokenSecret, d.Config.JWT.AccessTokenExpiry, d.Logger)
	user.UserRoutes(api.Group("", authMiddleware), d.Users)
	match.MatchRoutes(api, d.Matches, d.Sweeper, authMiddleware)
	message.MessageRoutes(api, d.Messages, authMiddleware)
	realtime.RealtimeRoutes(r, api, d.Realtime, d.Registry, authMiddleware)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
