package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/skillquest-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPath(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.LearningPath {
	tb.Helper()
	p := &types.LearningPath{
		ID:    uuid.New(),
		Title: title,
		Level: "beginner",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed path: %v", err)
	}
	return p
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, pathID uuid.UUID, order int) *types.Module {
	tb.Helper()
	m := &types.Module{
		ID:             uuid.New(),
		LearningPathID: pathID,
		Title:          fmt.Sprintf("module %d", order),
		Order:          order,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, order, xpReward int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:       uuid.New(),
		ModuleID: moduleID,
		Title:    fmt.Sprintf("lesson %d", order),
		Type:     "interactive",
		Content:  datatypes.JSONMap{"body": "content"},
		Duration: 10,
		XPReward: xpReward,
		Order:    order,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedAchievement(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, criteria datatypes.JSONMap, xpReward int) *types.Achievement {
	tb.Helper()
	a := &types.Achievement{
		ID:       uuid.New(),
		Title:    title,
		Criteria: criteria,
		XPReward: xpReward,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}

func SeedChallenge(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, xpReward int, availableUntil time.Time) *types.DailyChallenge {
	tb.Helper()
	c := &types.DailyChallenge{
		ID:             uuid.New(),
		Title:          title,
		Difficulty:     "easy",
		Type:           "quiz",
		XPReward:       xpReward,
		AvailableUntil: availableUntil,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed challenge: %v", err)
	}
	return c
}

func PtrFloat(v float64) *float64 { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
