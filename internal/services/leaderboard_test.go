package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillquest-backend/internal/data/repos/testutil"
)

func TestClampLeaderboardLimit(t *testing.T) {
	assert.Equal(t, DefaultLeaderboardLimit, ClampLeaderboardLimit(0))
	assert.Equal(t, DefaultLeaderboardLimit, ClampLeaderboardLimit(-3))
	assert.Equal(t, 7, ClampLeaderboardLimit(7))
	assert.Equal(t, MaxLeaderboardLimit, ClampLeaderboardLimit(1000))
}

func TestLeaderboardRebuildsEmptySetFromUsers(t *testing.T) {
	f := newFixture(t, fixtureOpts{redis: true})
	ctx := context.Background()
	low := f.seedUser(t, 10)
	high := f.seedUser(t, 500)

	top, err := f.board.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high.ID, top[0].UserID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, int64(500), top[0].XP)
	assert.Equal(t, low.ID, top[1].UserID)

	f.board.RecordXP(ctx, low.ID, 1010)
	top, err = f.board.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, low.ID, top[0].UserID)
	assert.Equal(t, int64(1010), top[0].XP)
}

func TestLeaderboardRecoversLostSortedSet(t *testing.T) {
	f := newFixture(t, fixtureOpts{redis: true})
	ctx := context.Background()
	top := f.seedUser(t, 5000)
	low := f.seedUser(t, 100)
	path := testutil.SeedPath(t, ctx, f.db, "Board")
	mod := testutil.SeedModule(t, ctx, f.db, path.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, f.db, mod.ID, 1, 50)

	_, err := f.learning.CompleteLesson(low.ctx, lesson.ID, CompleteLessonInput{})
	require.NoError(t, err)

	ranked, err := f.board.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, top.ID, ranked[0].UserID)
	assert.Equal(t, int64(5000), ranked[0].XP)
	assert.Equal(t, low.ID, ranked[1].UserID)
	assert.Equal(t, int64(150), ranked[1].XP)

	// A later award overwrites with the committed total.
	require.NoError(t, f.db.Table("users").Where("id = ?", low.ID).Update("xp", 6000).Error)
	f.board.RecordXP(ctx, low.ID, 6000)
	ranked, err = f.board.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, low.ID, ranked[0].UserID)
	assert.Equal(t, int64(6000), ranked[0].XP)
}

func TestLeaderboardFallsBackToDatabase(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	a := f.seedUser(t, 300)
	b := f.seedUser(t, 200)

	top, err := f.board.Top(ctx, 100)
	require.NoError(t, err)
	var ia, ib = -1, -1
	for i, e := range top {
		switch e.UserID {
		case a.ID:
			ia = i
		case b.ID:
			ib = i
		}
	}
	require.NotEqual(t, -1, ia)
	require.NotEqual(t, -1, ib)
	assert.Less(t, ia, ib)
	assert.Equal(t, ia+1, top[ia].Rank)
}
