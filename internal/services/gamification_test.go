package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/skillquest-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillquest-backend/internal/domain/gamification"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestCheckInSequence(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	user := f.seedUser(t, 0)

	_, err := f.gamification.GetStreak(user.ctx)
	_, code := apierr.StatusOf(err)
	assert.Equal(t, "streak_not_found", code)

	f.clock.Set(day(2024, 1, 1))
	res, err := f.gamification.CheckIn(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakCreated, res.Transition)
	assert.Equal(t, 0, res.Streak.CurrentStreak)
	assert.Equal(t, 0, res.Streak.LongestStreak)

	res, err = f.gamification.CheckIn(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakUnchanged, res.Transition)
	assert.Equal(t, 0, res.Delta)

	f.clock.Set(day(2024, 1, 2))
	res, err = f.gamification.CheckIn(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakExtended, res.Transition)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 1, res.Streak.LongestStreak)
	assert.Equal(t, 1, res.Delta)

	f.clock.Set(day(2024, 1, 3))
	_, err = f.gamification.CheckIn(user.ctx)
	require.NoError(t, err)

	f.clock.Set(day(2024, 1, 7))
	res, err = f.gamification.CheckIn(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakReset, res.Transition)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 2, res.Streak.LongestStreak)

	stored, err := f.gamification.GetStreak(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, 2, stored.LongestStreak)
	assert.Equal(t, 7, stored.LastActivityDate.Day())
}

func TestCheckInConsumesProtection(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	user := f.seedUser(t, 0)
	ctx := context.Background()

	require.NoError(t, f.db.WithContext(ctx).Create(&gamification.Streak{
		UserID:              user.ID,
		CurrentStreak:       6,
		LongestStreak:       6,
		LastActivityDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ProtectionAvailable: true,
	}).Error)

	f.clock.Set(day(2024, 1, 5))
	res, err := f.gamification.CheckIn(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakProtected, res.Transition)
	assert.Equal(t, 6, res.Streak.CurrentStreak)
	assert.Equal(t, 6, res.Streak.LongestStreak)
	assert.False(t, res.Streak.ProtectionAvailable)

	stored, err := f.gamification.GetStreak(user.ctx)
	require.NoError(t, err)
	assert.False(t, stored.ProtectionAvailable)
	assert.Equal(t, 5, stored.LastActivityDate.Day())
}

func TestCheckInConcurrentCallsExtendOnce(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	user := f.seedUser(t, 0)
	ctx := context.Background()

	require.NoError(t, f.db.WithContext(ctx).Create(&gamification.Streak{
		UserID:           user.ID,
		CurrentStreak:    5,
		LongestStreak:    5,
		LastActivityDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	f.clock.Set(day(2024, 1, 2))

	const workers = 8
	var wg sync.WaitGroup
	transitions := make([]gamification.StreakTransition, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.gamification.CheckIn(user.ctx)
			errs[i] = err
			if res != nil {
				transitions[i] = res.Transition
			}
		}(i)
	}
	wg.Wait()

	extended := 0
	for i := range errs {
		require.NoError(t, errs[i])
		if transitions[i] == gamification.StreakExtended {
			extended++
		} else {
			assert.Equal(t, gamification.StreakUnchanged, transitions[i])
		}
	}
	assert.Equal(t, 1, extended)

	stored, err := f.gamification.GetStreak(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.CurrentStreak)
	assert.Equal(t, 6, stored.LongestStreak)
}

func TestCheckInUsesStreakTimezone(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	loc := time.FixedZone("UTC+10", 10*60*60)
	svc := NewGamificationService(f.db, f.log, GamificationDeps{
		UserRepo:            f.userRepo,
		ProgressRepo:        f.progressRepo,
		AchievementRepo:     f.achievementRepo,
		UserAchievementRepo: f.userAchievementRepo,
		StreakRepo:          f.streakRepo,
		ChallengeRepo:       f.challengeRepo,
		Clock:               f.clock,
		StreakLocation:      loc,
	})
	user := f.seedUser(t, 0)

	// 20:00 UTC on Jan 1 is already Jan 2 in UTC+10.
	f.clock.Set(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC))
	res, err := svc.CheckIn(user.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak.LastActivityDate.Day())
}

func TestCompleteChallenge(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	user := f.seedUser(t, 10)
	f.clock.Set(day(2024, 3, 1))

	open := testutil.SeedChallenge(t, ctx, f.db, "open", 20, day(2024, 3, 2))
	expired := testutil.SeedChallenge(t, ctx, f.db, "expired", 20, day(2024, 2, 28))
	later := testutil.SeedChallenge(t, ctx, f.db, "later", 5, day(2024, 3, 9))

	list, err := f.gamification.ListChallenges(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, open.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)

	res, err := f.gamification.CompleteChallenge(user.ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, res.XPGained)
	assert.Equal(t, int64(30), res.UserXP)

	// No idempotence guard: a second completion pays again.
	res, err = f.gamification.CompleteChallenge(user.ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.UserXP)

	_, err = f.gamification.CompleteChallenge(user.ctx, expired.ID)
	_, code := apierr.StatusOf(err)
	assert.Equal(t, "challenge_not_found", code)

	_, err = f.gamification.CompleteChallenge(user.ctx, uuid.New())
	assert.True(t, errors.Is(err, apierr.ErrNotFound))
	assert.Equal(t, 50, f.userXP(t, user.ID))
}

func TestCompleteChallengeNeverLowersXP(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	user := f.seedUser(t, 100)
	f.clock.Set(day(2024, 3, 1))

	bad := testutil.SeedChallenge(t, ctx, f.db, "bad", 0, day(2024, 3, 2))
	require.NoError(t, f.db.Model(bad).Update("xp_reward", -30).Error)

	res, err := f.gamification.CompleteChallenge(user.ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPGained)
	assert.Equal(t, int64(100), res.UserXP)
	assert.Equal(t, 100, f.userXP(t, user.ID))
}

func TestAchievementsUnlockOnceAndPayXP(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	user := f.seedUser(t, 0)
	path := testutil.SeedPath(t, ctx, f.db, "Intro")
	mod := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, f.db, mod.ID, 1, 50)

	first := testutil.SeedAchievement(t, ctx, f.db, "A first lesson", datatypes.JSONMap{"type": "lessons_completed", "count": 1}, 25)
	rich := testutil.SeedAchievement(t, ctx, f.db, "B xp 75", datatypes.JSONMap{"type": "xp", "amount": 75}, 0)
	pathDone := testutil.SeedAchievement(t, ctx, f.db, "C path", datatypes.JSONMap{"type": "path_completed", "path_id": path.ID.String()}, 0)
	testutil.SeedAchievement(t, ctx, f.db, "D streak", datatypes.JSONMap{"type": "streak", "days": 3}, 0)
	testutil.SeedAchievement(t, ctx, f.db, "E mystery", datatypes.JSONMap{"type": "moon_phase"}, 0)

	res, err := f.learning.CompleteLesson(user.ctx, lesson.ID, CompleteLessonInput{})
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(res.AchievementsUnlocked))
	for _, a := range res.AchievementsUnlocked {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, rich.ID, pathDone.ID}, ids)
	assert.Equal(t, 75, f.userXP(t, user.ID))

	again, err := f.gamification.EvaluateAchievements(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, 75, f.userXP(t, user.ID))

	mine, err := f.gamification.ListUserAchievements(user.ctx)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for _, ua := range mine {
		require.NotNil(t, ua.Achievement)
	}
}

func TestListAchievementsOrderedByTitle(t *testing.T) {
	f := newFixture(t, fixtureOpts{redis: true})
	ctx := context.Background()
	testutil.SeedAchievement(t, ctx, f.db, "Zeta", datatypes.JSONMap{"type": "xp", "amount": 1}, 0)
	testutil.SeedAchievement(t, ctx, f.db, "Alpha", datatypes.JSONMap{"type": "xp", "amount": 1}, 0)

	list, err := f.gamification.ListAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Title)
	assert.Equal(t, "Zeta", list[1].Title)

	cached, err := f.gamification.ListAchievements(ctx)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, cached[0].ID)
}
