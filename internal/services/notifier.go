package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/realtime"
)

// =========================
// Progress notifier
// =========================

type ProgressNotifier interface {
	XPAwarded(ctx context.Context, userID uuid.UUID, source string, amount int, totalXP int64)
	StreakUpdated(ctx context.Context, userID uuid.UUID, streak *types.Streak, transition types.StreakTransition)
	AchievementUnlocked(ctx context.Context, userID uuid.UUID, achievement *types.Achievement)
}

type progressNotifier struct {
	emit SSEEmitter
}

// NewProgressNotifier returns a notifier that drops everything when emit is nil.
func NewProgressNotifier(emit SSEEmitter) ProgressNotifier {
	return &progressNotifier{emit: emit}
}

func (n *progressNotifier) XPAwarded(ctx context.Context, userID uuid.UUID, source string, amount int, totalXP int64) {
	if n == nil || n.emit == nil || userID == uuid.Nil || amount <= 0 {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventXPAwarded,
		Data: map[string]any{
			"source": source,
			"amount": amount,
			"xp":     totalXP,
		},
	})
}

func (n *progressNotifier) StreakUpdated(ctx context.Context, userID uuid.UUID, streak *types.Streak, transition types.StreakTransition) {
	if n == nil || n.emit == nil || userID == uuid.Nil || streak == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventStreakUpdated,
		Data: map[string]any{
			"transition":           string(transition),
			"current_streak":       streak.CurrentStreak,
			"longest_streak":       streak.LongestStreak,
			"protection_available": streak.ProtectionAvailable,
		},
	})
}

func (n *progressNotifier) AchievementUnlocked(ctx context.Context, userID uuid.UUID, achievement *types.Achievement) {
	if n == nil || n.emit == nil || userID == uuid.Nil || achievement == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventAchievementUnlocked,
		Data: map[string]any{
			"achievement_id": achievement.ID,
			"title":          achievement.Title,
			"icon":           achievement.Icon,
			"xp_reward":      achievement.XPReward,
		},
	})
}
