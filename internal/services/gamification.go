package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/data/repos"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/domain/gamification"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const (
	XPSourceLesson      = "lesson"
	XPSourceChallenge   = "challenge"
	XPSourceAchievement = "achievement"
)

// AchievementEvaluator unlocks every achievement whose criteria the user now
// meets and returns the newly unlocked ones.
type AchievementEvaluator interface {
	EvaluateAchievements(ctx context.Context, userID uuid.UUID) ([]*types.Achievement, error)
}

type CheckInResult struct {
	Streak     *types.Streak
	Transition types.StreakTransition
	// Delta is the change in current streak length.
	Delta                int
	AchievementsUnlocked []*types.Achievement
}

type ChallengeCompletion struct {
	Status               string
	XPGained             int
	UserXP               int64
	Challenge            *types.DailyChallenge
	AchievementsUnlocked []*types.Achievement
}

type GamificationService interface {
	AchievementEvaluator
	ListAchievements(ctx context.Context) ([]*types.Achievement, error)
	ListUserAchievements(ctx context.Context) ([]*types.UserAchievement, error)
	CheckIn(ctx context.Context) (*CheckInResult, error)
	GetStreak(ctx context.Context) (*types.Streak, error)
	ListChallenges(ctx context.Context) ([]*types.DailyChallenge, error)
	CompleteChallenge(ctx context.Context, challengeID uuid.UUID) (*ChallengeCompletion, error)
}

type gamificationService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	userRepo            repos.UserRepo
	progressRepo        repos.UserProgressRepo
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo
	streakRepo          repos.StreakRepo
	challengeRepo       repos.DailyChallengeRepo
	catalog             *redis.JSONCache
	xp                  XPRecorder
	notify              ProgressNotifier
	metrics             *observability.Metrics
	clock               Clock
	streakLoc           *time.Location
}

type GamificationDeps struct {
	UserRepo            repos.UserRepo
	ProgressRepo        repos.UserProgressRepo
	AchievementRepo     repos.AchievementRepo
	UserAchievementRepo repos.UserAchievementRepo
	StreakRepo          repos.StreakRepo
	ChallengeRepo       repos.DailyChallengeRepo
	// Catalog may be nil; reads then go straight to the store.
	Catalog  *redis.JSONCache
	XP       XPRecorder
	Notifier ProgressNotifier
	Metrics  *observability.Metrics
	Clock    Clock
	// StreakLocation decides which calendar day a check-in falls on. Nil is UTC.
	StreakLocation *time.Location
}

func NewGamificationService(db *gorm.DB, log *logger.Logger, deps GamificationDeps) GamificationService {
	loc := deps.StreakLocation
	if loc == nil {
		loc = time.UTC
	}
	notify := deps.Notifier
	if notify == nil {
		notify = NewProgressNotifier(nil)
	}
	return &gamificationService{
		db:                  db,
		log:                 log.With("service", "GamificationService"),
		userRepo:            deps.UserRepo,
		progressRepo:        deps.ProgressRepo,
		achievementRepo:     deps.AchievementRepo,
		userAchievementRepo: deps.UserAchievementRepo,
		streakRepo:          deps.StreakRepo,
		challengeRepo:       deps.ChallengeRepo,
		catalog:             deps.Catalog,
		xp:                  deps.XP,
		notify:              notify,
		metrics:             deps.Metrics,
		clock:               clockOrSystem(deps.Clock),
		streakLoc:           loc,
	}
}

func (gs *gamificationService) ListAchievements(ctx context.Context) ([]*types.Achievement, error) {
	gs.metrics.IncCacheLookup("achievements")
	out, err := redis.GetOrLoad(ctx, gs.catalog, "achievements", func(ctx context.Context) ([]*types.Achievement, error) {
		return gs.achievementRepo.List(dbctx.Context{Ctx: ctx})
	})
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return out, nil
}

func (gs *gamificationService) ListUserAchievements(ctx context.Context) ([]*types.UserAchievement, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	out, err := gs.userAchievementRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	return out, nil
}

func (gs *gamificationService) CheckIn(ctx context.Context) (*CheckInResult, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	today := gamification.DateOf(gs.clock.Now(), gs.streakLoc)

	res := &CheckInResult{}
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, created, err := gs.streakRepo.GetOrCreateForUpdate(dbc, userID, today)
		if err != nil {
			return fmt.Errorf("lock streak: %w", err)
		}
		if created {
			res.Streak = row
			res.Transition = gamification.StreakCreated
			return nil
		}
		next, transition := gamification.NextStreak(row, today)
		res.Transition = transition
		res.Delta = next.CurrentStreak - row.CurrentStreak
		if transition.Changed() {
			if err := gs.streakRepo.Save(dbc, &next); err != nil {
				return fmt.Errorf("save streak: %w", err)
			}
		}
		res.Streak = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	gs.metrics.IncStreakCheckIn(string(res.Transition))
	if res.Transition.Changed() || res.Transition == gamification.StreakCreated {
		gs.notify.StreakUpdated(ctx, userID, res.Streak, res.Transition)
	}
	res.AchievementsUnlocked = gs.evaluateQuietly(ctx, userID)
	return res, nil
}

func (gs *gamificationService) GetStreak(ctx context.Context) (*types.Streak, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	row, err := gs.streakRepo.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("streak_not_found", "No streak found")
	}
	return row, nil
}

func (gs *gamificationService) ListChallenges(ctx context.Context) ([]*types.DailyChallenge, error) {
	out, err := gs.challengeRepo.ListAvailable(dbctx.Context{Ctx: ctx}, gs.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return out, nil
}

// CompleteChallenge awards the challenge XP every time it is called while the
// challenge is available.
func (gs *gamificationService) CompleteChallenge(ctx context.Context, challengeID uuid.UUID) (*ChallengeCompletion, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	now := gs.clock.Now()

	out := &ChallengeCompletion{Status: "challenge completed"}
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ch, err := gs.challengeRepo.GetByID(dbc, challengeID)
		if err != nil {
			return fmt.Errorf("load challenge: %w", err)
		}
		if ch == nil || !ch.AvailableAt(now) {
			return apierr.NotFound("challenge_not_found", "Challenge not found")
		}
		reward := awardableXP(ch.XPReward)
		total, err := gs.userRepo.AddXP(dbc, userID, reward)
		if err != nil {
			return fmt.Errorf("award challenge xp: %w", err)
		}
		out.Challenge = ch
		out.XPGained = reward
		out.UserXP = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	gs.afterXP(ctx, userID, XPSourceChallenge, out.XPGained, out.UserXP)
	out.AchievementsUnlocked = gs.evaluateQuietly(ctx, userID)
	return out, nil
}

// EvaluateAchievements checks the catalog in title order. XP granted by an
// unlock counts toward xp criteria later in the same pass.
func (gs *gamificationService) EvaluateAchievements(ctx context.Context, userID uuid.UUID) ([]*types.Achievement, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	catalog, err := gs.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	unlocked, err := gs.userAchievementRepo.UnlockedIDs(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocked achievements: %w", err)
	}
	pending := make([]*types.Achievement, 0, len(catalog))
	for _, a := range catalog {
		if a != nil && !unlocked[a.ID] {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	stats, err := gs.progressStats(dbc, userID)
	if err != nil {
		return nil, err
	}

	var fresh []*types.Achievement
	for _, a := range pending {
		crit, err := gamification.ParseCriteria(a.Criteria)
		if err != nil {
			gs.log.Debug("Skipping achievement with unusable criteria", "achievement_id", a.ID, "error", err)
			continue
		}
		if !crit.Satisfied(stats) {
			continue
		}
		inserted, total, err := gs.unlock(ctx, userID, a)
		if err != nil {
			return fresh, err
		}
		if !inserted {
			continue
		}
		fresh = append(fresh, a)
		if a.XPReward > 0 {
			stats.XP = total
			gs.afterXP(ctx, userID, XPSourceAchievement, a.XPReward, total)
		}
		gs.notify.AchievementUnlocked(ctx, userID, a)
	}
	gs.metrics.AddAchievementsUnlocked(len(fresh))
	return fresh, nil
}

func (gs *gamificationService) unlock(ctx context.Context, userID uuid.UUID, a *types.Achievement) (bool, int64, error) {
	var inserted bool
	var total int64
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ok, err := gs.userAchievementRepo.Unlock(dbc, userID, a.ID, gs.clock.Now())
		if err != nil {
			return fmt.Errorf("unlock achievement: %w", err)
		}
		inserted = ok
		if !ok || a.XPReward <= 0 {
			return nil
		}
		total, err = gs.userRepo.AddXP(dbc, userID, a.XPReward)
		if err != nil {
			return fmt.Errorf("award achievement xp: %w", err)
		}
		return nil
	})
	return inserted, total, err
}

func (gs *gamificationService) progressStats(dbc dbctx.Context, userID uuid.UUID) (gamification.ProgressStats, error) {
	stats := gamification.ProgressStats{CompletedPaths: map[uuid.UUID]bool{}}

	user, err := gs.userRepo.GetByID(dbc, userID)
	if err != nil {
		return stats, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return stats, apierr.NotFound("user_not_found", "User not found")
	}
	stats.XP = int64(user.XP)

	if stats.LessonsCompleted, err = gs.progressRepo.CountCompleted(dbc, userID); err != nil {
		return stats, fmt.Errorf("count completed lessons: %w", err)
	}
	streak, err := gs.streakRepo.GetByUserID(dbc, userID)
	if err != nil {
		return stats, fmt.Errorf("load streak: %w", err)
	}
	if streak != nil {
		stats.CurrentStreak = streak.CurrentStreak
		stats.LongestStreak = streak.LongestStreak
	}
	paths, err := gs.progressRepo.CompletedPathIDs(dbc, userID)
	if err != nil {
		return stats, fmt.Errorf("load completed paths: %w", err)
	}
	for _, id := range paths {
		stats.CompletedPaths[id] = true
	}
	return stats, nil
}

// evaluateQuietly runs after a committed award; failures are logged only.
func (gs *gamificationService) evaluateQuietly(ctx context.Context, userID uuid.UUID) []*types.Achievement {
	out, err := gs.EvaluateAchievements(ctx, userID)
	if err != nil {
		gs.log.Warn("Achievement evaluation failed", "user_id", userID, "error", err)
	}
	return out
}

// awardableXP clamps a stored reward so an award never lowers a total.
func awardableXP(reward int) int {
	if reward < 0 {
		return 0
	}
	return reward
}

func (gs *gamificationService) afterXP(ctx context.Context, userID uuid.UUID, source string, amount int, total int64) {
	if amount <= 0 {
		return
	}
	gs.metrics.ObserveXP(source, amount)
	if gs.xp != nil {
		gs.xp.RecordXP(ctx, userID, total)
	}
	gs.notify.XPAwarded(ctx, userID, source, amount, total)
}
