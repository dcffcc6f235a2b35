package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type Services struct {
	Avatar       services.AvatarService
	Auth         services.AuthService
	User         services.UserService
	Gamification services.GamificationService
	Learning     services.LearningService
	Leaderboard  services.LeaderboardService
	Seed         services.SeedService
	TokenSweeper services.TokenSweeper
	Notifier     services.ProgressNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")
	clock := services.SystemClock()

	streakLoc, err := cfg.StreakLocation()
	if err != nil {
		return Services{}, err
	}

	// With a bus, every instance's forwarder feeds its own hub, so emitting
	// locally as well would deliver twice.
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if c.Bus != nil {
		emitter = &services.BusEmitter{Bus: c.Bus, Log: log}
	}
	notifier := services.NewProgressNotifier(emitter)

	avatarService, err := services.NewAvatarService(log, c.Bucket, clock)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	authService := services.NewAuthService(db, log, r.User, r.UserToken, avatarService, c.Metrics, clock, services.AuthConfig{
		JWTSecretKey: cfg.JWTSecretKey,
		AccessTTL:    cfg.AccessTokenTTL,
		RefreshTTL:   cfg.RefreshTokenTTL,
	})
	userService := services.NewUserService(db, log, r.User, avatarService)
	leaderboard := services.NewLeaderboardService(log, r.User, c.Leaderboard)

	gamification := services.NewGamificationService(db, log, services.GamificationDeps{
		UserRepo:            r.User,
		ProgressRepo:        r.UserProgress,
		AchievementRepo:     r.Achievement,
		UserAchievementRepo: r.UserAchievement,
		StreakRepo:          r.Streak,
		ChallengeRepo:       r.DailyChallenge,
		Catalog:             c.Catalog,
		XP:                  leaderboard,
		Notifier:            notifier,
		Metrics:             c.Metrics,
		Clock:               clock,
		StreakLocation:      streakLoc,
	})
	learning := services.NewLearningService(db, log, services.LearningDeps{
		UserRepo:     r.User,
		PathRepo:     r.LearningPath,
		LessonRepo:   r.Lesson,
		ProgressRepo: r.UserProgress,
		Catalog:      c.Catalog,
		Achievements: gamification,
		XP:           leaderboard,
		Notifier:     notifier,
		Metrics:      c.Metrics,
		Clock:        clock,
	})
	seed := services.NewSeedService(db, log, services.SeedDeps{
		PathRepo:        r.LearningPath,
		ModuleRepo:      r.Module,
		LessonRepo:      r.Lesson,
		AchievementRepo: r.Achievement,
		ChallengeRepo:   r.DailyChallenge,
		Catalog:         c.Catalog,
		Clock:           clock,
	})

	return Services{
		Avatar:       avatarService,
		Auth:         authService,
		User:         userService,
		Gamification: gamification,
		Learning:     learning,
		Leaderboard:  leaderboard,
		Seed:         seed,
		TokenSweeper: services.NewTokenSweeper(log, r.UserToken, c.Metrics, clock),
		Notifier:     notifier,
	}, nil
}
