package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skillquest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillquest-backend/internal/http/middleware"
	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/http/validation"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// ServiceName enables otelgin spans when non-empty.
	ServiceName      string
	CORSAllowOrigins []string
	// MediaRoot is served under /media when object storage is local.
	MediaRoot string

	AuthHandler         *httpH.AuthHandler
	AuthMiddleware      *httpMW.AuthMiddleware
	UserHandler         *httpH.UserHandler
	LearningHandler     *httpH.LearningHandler
	GamificationHandler *httpH.GamificationHandler
	RealtimeHandler     *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	validation.Register()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, "/healthcheck", "/metrics"))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSAllowOrigins))

	r.NoRoute(func(c *gin.Context) {
		response.RespondErr(c, apierr.NotFound("not_found", "Not found"))
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	if root := strings.TrimSpace(cfg.MediaRoot); root != "" {
		r.StaticFS("/media", http.Dir(root))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/users/register", cfg.AuthHandler.Register)
			api.POST("/users/token", cfg.AuthHandler.Login)
			api.POST("/users/token/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/users/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PATCH("/users/me", cfg.UserHandler.UpdateMe)
			protected.POST("/users/me/avatar", cfg.UserHandler.UploadAvatar)
		}

		// Learning
		if cfg.LearningHandler != nil {
			protected.GET("/learning/paths", cfg.LearningHandler.ListPaths)
			protected.GET("/learning/paths/:id", cfg.LearningHandler.GetPath)
			protected.GET("/learning/paths/:id/progress", cfg.LearningHandler.GetPathProgress)
			protected.POST("/learning/lessons/:id/complete", cfg.LearningHandler.CompleteLesson)
		}

		// Gamification
		if cfg.GamificationHandler != nil {
			protected.GET("/gamification/achievements", cfg.GamificationHandler.ListAchievements)
			protected.GET("/gamification/achievements/user", cfg.GamificationHandler.ListUserAchievements)
			protected.POST("/gamification/streak/check-in", cfg.GamificationHandler.CheckIn)
			protected.GET("/gamification/streak", cfg.GamificationHandler.GetStreak)
			protected.GET("/gamification/challenges", cfg.GamificationHandler.ListChallenges)
			protected.POST("/gamification/challenges/:id/complete", cfg.GamificationHandler.CompleteChallenge)
			protected.GET("/gamification/leaderboard", cfg.GamificationHandler.Leaderboard)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
