package redis

import (
	"context"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type LeaderboardEntry struct {
	UserID uuid.UUID
	XP     int64
}

// Leaderboard keeps user XP totals in a sorted set.
type Leaderboard struct {
	rdb goredis.UniversalClient
	key string
}

func NewLeaderboard(rdb goredis.UniversalClient, key string) *Leaderboard {
	if key == "" {
		key = "leaderboard:xp"
	}
	return &Leaderboard{rdb: rdb, key: key}
}

// Set writes an absolute XP total for userID.
func (l *Leaderboard) Set(ctx context.Context, userID uuid.UUID, xp int64) error {
	return l.rdb.ZAdd(ctx, l.key, goredis.Z{Score: float64(xp), Member: userID.String()}).Err()
}

func (l *Leaderboard) Size(ctx context.Context) (int64, error) {
	return l.rdb.ZCard(ctx, l.key).Result()
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, l.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		out = append(out, LeaderboardEntry{UserID: id, XP: int64(z.Score)})
	}
	return out, nil
}
