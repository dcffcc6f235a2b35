package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillquest-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/realtime"
)

func TestCompleteLessonAwardsXPOnce(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	user := f.seedUser(t, 100)
	path := testutil.SeedPath(t, ctx, f.db, "Python")
	mod := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, f.db, mod.ID, 1, 50)

	first, err := f.learning.CompleteLesson(user.ctx, lesson.ID, CompleteLessonInput{Score: testutil.PtrFloat(90), TimeSpent: 120})
	require.NoError(t, err)
	assert.Equal(t, LessonStatusCompleted, first.Status)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, 50, first.XPGained)
	assert.Equal(t, int64(150), first.UserXP)
	require.NotNil(t, first.Progress)
	assert.True(t, first.Progress.Completed)
	require.NotNil(t, first.Progress.CompletedAt)

	second, err := f.learning.CompleteLesson(user.ctx, lesson.ID, CompleteLessonInput{TimeSpent: 5})
	require.NoError(t, err)
	assert.Equal(t, LessonStatusAlreadyCompleted, second.Status)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, 0, second.XPGained)
	assert.Equal(t, int64(150), second.UserXP)
	require.NotNil(t, second.Progress.CompletedAt)
	assert.True(t, first.Progress.CompletedAt.Equal(*second.Progress.CompletedAt))
	if assert.NotNil(t, second.Progress.Score) {
		assert.Equal(t, 90.0, *second.Progress.Score)
	}

	assert.Equal(t, 150, f.userXP(t, user.ID))
}

func TestCompleteLessonConcurrentCallsAwardOnce(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	user := f.seedUser(t, 0)
	path := testutil.SeedPath(t, ctx, f.db, "Go")
	mod := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, f.db, mod.ID, 1, 40)

	const workers = 6
	var wg sync.WaitGroup
	gained := make([]int, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.learning.CompleteLesson(user.ctx, lesson.ID, CompleteLessonInput{})
			errs[i] = err
			if res != nil {
				gained[i] = res.XPGained
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range errs {
		require.NoError(t, errs[i])
		total += gained[i]
	}
	assert.Equal(t, 40, total)
	assert.Equal(t, 40, f.userXP(t, user.ID))
}

func TestCompleteLessonValidation(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	user := f.seedUser(t, 0)

	_, err := f.learning.CompleteLesson(user.ctx, uuid.New(), CompleteLessonInput{})
	status, code := apierr.StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "lesson_not_found", code)

	_, err = f.learning.CompleteLesson(user.ctx, uuid.New(), CompleteLessonInput{Score: testutil.PtrFloat(101)})
	_, code = apierr.StatusOf(err)
	assert.Equal(t, "invalid_score", code)

	_, err = f.learning.CompleteLesson(user.ctx, uuid.New(), CompleteLessonInput{TimeSpent: -1})
	assert.True(t, errors.Is(err, apierr.ErrInvalidArgument))

	_, err = f.learning.CompleteLesson(context.Background(), uuid.New(), CompleteLessonInput{})
	assert.True(t, errors.Is(err, apierr.ErrUnauthorized))
}

func TestCompleteLessonNotifiesAndRanks(t *testing.T) {
	f := newFixture(t, fixtureOpts{redis: true})
	ctx := context.Background()
	user := f.seedUser(t, 0)
	path := testutil.SeedPath(t, ctx, f.db, "Math")
	mod := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, f.db, mod.ID, 1, 30)

	client := f.hub.NewSSEClient(user.ID)
	f.hub.AddChannel(client, realtime.UserChannel(user.ID))
	defer f.hub.CloseClient(client)

	_, err := f.learning.CompleteLesson(user.ctx, lesson.ID, CompleteLessonInput{})
	require.NoError(t, err)

	select {
	case msg := <-client.Outbound:
		assert.Equal(t, realtime.SSEEventXPAwarded, msg.Event)
	default:
		t.Fatal("expected an XPAwarded message")
	}

	top, err := f.board.Top(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, top)
	assert.Equal(t, user.ID, top[0].UserID)
	assert.Equal(t, int64(30), top[0].XP)
}

func TestPathProgress(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	user := f.seedUser(t, 0)

	empty := testutil.SeedPath(t, ctx, f.db, "Empty")
	pp, err := f.learning.GetPathProgress(user.ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pp.TotalLessons)
	assert.Equal(t, 0.0, pp.Percentage)

	path := testutil.SeedPath(t, ctx, f.db, "Science")
	m1 := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	m2 := testutil.SeedModule(t, ctx, f.db, path.ID, 2)
	l1 := testutil.SeedLesson(t, ctx, f.db, m1.ID, 1, 10)
	testutil.SeedLesson(t, ctx, f.db, m1.ID, 2, 10)
	testutil.SeedLesson(t, ctx, f.db, m2.ID, 1, 10)
	l4 := testutil.SeedLesson(t, ctx, f.db, m2.ID, 2, 10)

	for _, id := range []uuid.UUID{l1.ID, l4.ID} {
		_, err := f.learning.CompleteLesson(user.ctx, id, CompleteLessonInput{})
		require.NoError(t, err)
	}

	pp, err = f.learning.GetPathProgress(user.ctx, path.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pp.TotalLessons)
	assert.Equal(t, int64(2), pp.CompletedLessons)
	assert.InDelta(t, 50.0, pp.Percentage, 1e-9)

	_, err = f.learning.GetPathProgress(user.ctx, uuid.New())
	_, code := apierr.StatusOf(err)
	assert.Equal(t, "path_not_found", code)
}

func TestGetPathReturnsOrderedTree(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	path := testutil.SeedPath(t, ctx, f.db, "Art")
	m2 := testutil.SeedModule(t, ctx, f.db, path.ID, 2)
	m1 := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	testutil.SeedLesson(t, ctx, f.db, m1.ID, 2, 5)
	testutil.SeedLesson(t, ctx, f.db, m1.ID, 1, 5)
	testutil.SeedLesson(t, ctx, f.db, m2.ID, 1, 5)

	got, err := f.learning.GetPath(ctx, path.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 2)
	assert.Equal(t, m1.ID, got.Modules[0].ID)
	assert.Equal(t, m2.ID, got.Modules[1].ID)
	require.Len(t, got.Modules[0].Lessons, 2)
	assert.Equal(t, 1, got.Modules[0].Lessons[0].Order)
	assert.Equal(t, 2, got.Modules[0].Lessons[1].Order)

	_, err = f.learning.GetPath(ctx, uuid.New())
	assert.True(t, errors.Is(err, apierr.ErrNotFound))
}

func TestListPathsServedFromCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t, fixtureOpts{redis: true})
	ctx := context.Background()
	testutil.SeedPath(t, ctx, f.db, "First")

	before, err := f.learning.ListPaths(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	testutil.SeedPath(t, ctx, f.db, "Second")
	cached, err := f.learning.ListPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, len(before))

	require.NoError(t, f.catalog.Invalidate(ctx))
	fresh, err := f.learning.ListPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, len(before)+1)
}
