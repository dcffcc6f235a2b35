package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/data/repos"
	"github.com/yungbote/skillquest-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock(t time.Time) *stepClock { return &stepClock{t: t} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	db    *gorm.DB
	log   *logger.Logger
	clock *stepClock
	hub   *realtime.SSEHub

	userRepo            repos.UserRepo
	userTokenRepo       repos.UserTokenRepo
	pathRepo            repos.LearningPathRepo
	moduleRepo          repos.ModuleRepo
	lessonRepo          repos.LessonRepo
	progressRepo        repos.UserProgressRepo
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo
	streakRepo          repos.StreakRepo
	challengeRepo       repos.DailyChallengeRepo

	catalog *redis.JSONCache
	rdb     *goredis.Client
	board   LeaderboardService

	gamification GamificationService
	learning     LearningService
}

type fixtureOpts struct {
	redis bool
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:    db,
		log:   log,
		clock: newStepClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		hub:   realtime.NewSSEHub(log),

		userRepo:            repos.NewUserRepo(db, log),
		userTokenRepo:       repos.NewUserTokenRepo(db, log),
		pathRepo:            repos.NewLearningPathRepo(db, log),
		moduleRepo:          repos.NewModuleRepo(db, log),
		lessonRepo:          repos.NewLessonRepo(db, log),
		progressRepo:        repos.NewUserProgressRepo(db, log),
		achievementRepo:     repos.NewAchievementRepo(db, log),
		userAchievementRepo: repos.NewUserAchievementRepo(db, log),
		streakRepo:          repos.NewStreakRepo(db, log),
		challengeRepo:       repos.NewDailyChallengeRepo(db, log),
	}

	var board *redis.Leaderboard
	if opts.redis {
		mr := miniredis.RunT(t)
		f.rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = f.rdb.Close() })
		f.catalog = redis.NewJSONCache(f.rdb, "catalog:", time.Minute, log)
		board = redis.NewLeaderboard(f.rdb, "leaderboard:test")
	}
	f.board = NewLeaderboardService(log, f.userRepo, board)

	notifier := NewProgressNotifier(&HubEmitter{Hub: f.hub})
	f.gamification = NewGamificationService(db, log, GamificationDeps{
		UserRepo:            f.userRepo,
		ProgressRepo:        f.progressRepo,
		AchievementRepo:     f.achievementRepo,
		UserAchievementRepo: f.userAchievementRepo,
		StreakRepo:          f.streakRepo,
		ChallengeRepo:       f.challengeRepo,
		Catalog:             f.catalog,
		XP:                  f.board,
		Notifier:            notifier,
		Clock:               f.clock,
	})
	f.learning = NewLearningService(db, log, LearningDeps{
		UserRepo:     f.userRepo,
		PathRepo:     f.pathRepo,
		LessonRepo:   f.lessonRepo,
		ProgressRepo: f.progressRepo,
		Catalog:      f.catalog,
		Achievements: f.gamification,
		XP:           f.board,
		Notifier:     notifier,
		Clock:        f.clock,
	})
	return f
}

func (f *fixture) seedUser(t *testing.T, xp int) *userFixture {
	t.Helper()
	u := testutil.SeedUser(t, context.Background(), f.db, "u"+uuid.NewString()[:8])
	if xp != 0 {
		require.NoError(t, f.db.Model(u).Update("xp", xp).Error)
		u.XP = xp
	}
	return &userFixture{ID: u.ID, ctx: authedCtx(u.ID)}
}

func (f *fixture) bucket(t *testing.T) gcp.BucketService {
	t.Helper()
	bs, err := gcp.NewBucketService(context.Background(), f.log, gcp.ObjectStorageConfig{
		Mode:     gcp.ObjectStorageModeLocal,
		LocalDir: t.TempDir(),
	})
	require.NoError(t, err)
	return bs
}

func (f *fixture) userXP(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var xp int
	require.NoError(t, f.db.Table("users").Where("id = ?", id).Pluck("xp", &xp).Error)
	return xp
}

type userFixture struct {
	ID  uuid.UUID
	ctx context.Context
}

func authedCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}
