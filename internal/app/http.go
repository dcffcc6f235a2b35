package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/http"
	httpH "github.com/yungbote/skillquest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillquest-backend/internal/http/middleware"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Learning     *httpH.LearningHandler
	Gamification *httpH.GamificationHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services, bucket gcp.BucketService, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db, log),
		Auth:         httpH.NewAuthHandler(s.Auth, bucket),
		User:         httpH.NewUserHandler(s.User, bucket),
		Learning:     httpH.NewLearningHandler(s.Learning),
		Gamification: httpH.NewGamificationHandler(s.Gamification, s.Leaderboard),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, s.Auth)}
}

func wireServer(log *logger.Logger, cfg Config, c Clients, h Handlers, mw Middleware) *http.Server {
	routerCfg := http.RouterConfig{
		Log:                 log,
		Metrics:             c.Metrics,
		CORSAllowOrigins:    cfg.CORSAllowOrigins,
		AuthHandler:         h.Auth,
		AuthMiddleware:      mw.Auth,
		UserHandler:         h.User,
		LearningHandler:     h.Learning,
		GamificationHandler: h.Gamification,
		RealtimeHandler:     h.Realtime,
		HealthHandler:       h.Health,
	}
	if cfg.Otel.Enabled {
		routerCfg.ServiceName = cfg.Otel.ServiceName
	}
	if root, ok := gcp.LocalRoot(c.Bucket); ok {
		routerCfg.MediaRoot = root
	}
	return http.NewServer(http.ServerConfig{
		Addr:         cfg.Addr(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}, routerCfg)
}
