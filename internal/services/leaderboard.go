package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/data/repos"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar_url"`
	Level    int       `json:"level"`
	XP       int64     `json:"xp"`
}

// XPRecorder is told the committed XP total after every award.
type XPRecorder interface {
	RecordXP(ctx context.Context, userID uuid.UUID, total int64)
}

type LeaderboardService interface {
	XPRecorder
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	// Rebuild overwrites the sorted set from the users table.
	Rebuild(ctx context.Context) error
}

type leaderboardService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	board    *redis.Leaderboard
}

// NewLeaderboardService ranks from board when it is non-nil and from the
// users table otherwise.
func NewLeaderboardService(log *logger.Logger, userRepo repos.UserRepo, board *redis.Leaderboard) LeaderboardService {
	return &leaderboardService{
		log:      log.With("service", "LeaderboardService"),
		userRepo: userRepo,
		board:    board,
	}
}

func ClampLeaderboardLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	}
	return limit
}

// RecordXP writes the absolute total. A missing sorted set is rebuilt from
// the users table, which already holds the committed total.
func (s *leaderboardService) RecordXP(ctx context.Context, userID uuid.UUID, total int64) {
	if s.board == nil || userID == uuid.Nil {
		return
	}
	size, err := s.board.Size(ctx)
	if err != nil {
		s.log.Warn("Leaderboard size check failed", "user_id", userID, "error", err)
		return
	}
	if size == 0 {
		if err := s.Rebuild(ctx); err != nil {
			s.log.Warn("Leaderboard rebuild failed", "user_id", userID, "error", err)
		}
		return
	}
	if err := s.board.Set(ctx, userID, total); err != nil {
		s.log.Warn("Leaderboard update failed", "user_id", userID, "error", err)
	}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	limit = ClampLeaderboardLimit(limit)
	dbc := dbctx.Context{Ctx: ctx}

	if s.board != nil {
		entries, err := s.topFromBoard(ctx, dbc, limit)
		if err == nil {
			return entries, nil
		}
		s.log.Warn("Leaderboard read failed, falling back to database", "error", err)
	}

	users, err := s.userRepo.TopByXP(dbc, limit)
	if err != nil {
		return nil, fmt.Errorf("load top users: %w", err)
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, entryFor(i+1, u, int64(u.XP)))
	}
	return out, nil
}

func (s *leaderboardService) topFromBoard(ctx context.Context, dbc dbctx.Context, limit int) ([]LeaderboardEntry, error) {
	size, err := s.board.Size(ctx)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		if err := s.Rebuild(ctx); err != nil {
			return nil, err
		}
	}
	ranked, err := s.board.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, e := range ranked {
		ids = append(ids, e.UserID)
	}
	users, err := s.userRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]LeaderboardEntry, 0, len(ranked))
	for _, e := range ranked {
		u := byID[e.UserID]
		if u == nil {
			continue
		}
		out = append(out, entryFor(len(out)+1, u, e.XP))
	}
	return out, nil
}

func (s *leaderboardService) Rebuild(ctx context.Context) error {
	if s.board == nil {
		return nil
	}
	users, err := s.userRepo.TopByXP(dbctx.Context{Ctx: ctx}, 10000)
	if err != nil {
		return fmt.Errorf("load users for leaderboard: %w", err)
	}
	for _, u := range users {
		if err := s.board.Set(ctx, u.ID, int64(u.XP)); err != nil {
			return fmt.Errorf("write leaderboard: %w", err)
		}
	}
	s.log.Info("Leaderboard rebuilt", "users", len(users))
	return nil
}

func entryFor(rank int, u *types.User, xp int64) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:     rank,
		UserID:   u.ID,
		Username: u.Username,
		Avatar:   u.AvatarURL,
		Level:    u.Level,
		XP:       xp,
	}
}
