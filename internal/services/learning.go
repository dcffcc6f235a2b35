package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/data/repos"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/domain/learning"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const (
	LessonStatusCompleted        = "lesson completed"
	LessonStatusAlreadyCompleted = "lesson already completed"
)

type PathProgress struct {
	PathID           uuid.UUID
	TotalLessons     int64
	CompletedLessons int64
	Percentage       float64
}

type CompleteLessonInput struct {
	// Score is optional and must lie in [0, 100].
	Score     *float64
	TimeSpent int
}

type LessonCompletion struct {
	Status               string
	AlreadyCompleted     bool
	XPGained             int
	UserXP               int64
	Lesson               *types.Lesson
	Progress             *types.UserProgress
	AchievementsUnlocked []*types.Achievement
}

type LearningService interface {
	ListPaths(ctx context.Context) ([]*types.LearningPath, error)
	GetPath(ctx context.Context, pathID uuid.UUID) (*types.LearningPath, error)
	GetPathProgress(ctx context.Context, pathID uuid.UUID) (*PathProgress, error)
	CompleteLesson(ctx context.Context, lessonID uuid.UUID, in CompleteLessonInput) (*LessonCompletion, error)
}

type LearningDeps struct {
	UserRepo     repos.UserRepo
	PathRepo     repos.LearningPathRepo
	LessonRepo   repos.LessonRepo
	ProgressRepo repos.UserProgressRepo
	// Catalog may be nil; reads then go straight to the store.
	Catalog      *redis.JSONCache
	Achievements AchievementEvaluator
	XP           XPRecorder
	Notifier     ProgressNotifier
	Metrics      *observability.Metrics
	Clock        Clock
}

type learningService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	pathRepo     repos.LearningPathRepo
	lessonRepo   repos.LessonRepo
	progressRepo repos.UserProgressRepo
	catalog      *redis.JSONCache
	achievements AchievementEvaluator
	xp           XPRecorder
	notify       ProgressNotifier
	metrics      *observability.Metrics
	clock        Clock
}

func NewLearningService(db *gorm.DB, log *logger.Logger, deps LearningDeps) LearningService {
	notify := deps.Notifier
	if notify == nil {
		notify = NewProgressNotifier(nil)
	}
	return &learningService{
		db:           db,
		log:          log.With("service", "LearningService"),
		userRepo:     deps.UserRepo,
		pathRepo:     deps.PathRepo,
		lessonRepo:   deps.LessonRepo,
		progressRepo: deps.ProgressRepo,
		catalog:      deps.Catalog,
		achievements: deps.Achievements,
		xp:           deps.XP,
		notify:       notify,
		metrics:      deps.Metrics,
		clock:        clockOrSystem(deps.Clock),
	}
}

func (ls *learningService) ListPaths(ctx context.Context) ([]*types.LearningPath, error) {
	ls.metrics.IncCacheLookup("paths")
	out, err := redis.GetOrLoad(ctx, ls.catalog, "paths", func(ctx context.Context) ([]*types.LearningPath, error) {
		return ls.pathRepo.ListTrees(dbctx.Context{Ctx: ctx})
	})
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	return out, nil
}

func (ls *learningService) GetPath(ctx context.Context, pathID uuid.UUID) (*types.LearningPath, error) {
	ls.metrics.IncCacheLookup("path")
	out, err := redis.GetOrLoad(ctx, ls.catalog, "path:"+pathID.String(), func(ctx context.Context) (*types.LearningPath, error) {
		p, err := ls.pathRepo.GetTree(dbctx.Context{Ctx: ctx}, pathID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apierr.NotFound("path_not_found", "Learning path not found")
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ls *learningService) GetPathProgress(ctx context.Context, pathID uuid.UUID) (*PathProgress, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	exists, err := ls.pathRepo.Exists(dbc, pathID)
	if err != nil {
		return nil, fmt.Errorf("load path: %w", err)
	}
	if !exists {
		return nil, apierr.NotFound("path_not_found", "Learning path not found")
	}
	total, err := ls.lessonRepo.CountByPathID(dbc, pathID)
	if err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}
	completed, err := ls.progressRepo.CountCompletedInPath(dbc, userID, pathID)
	if err != nil {
		return nil, fmt.Errorf("count completed lessons: %w", err)
	}
	return &PathProgress{
		PathID:           pathID,
		TotalLessons:     total,
		CompletedLessons: completed,
		Percentage:       learning.Percentage(completed, total),
	}, nil
}

// CompleteLesson marks the lesson completed for the caller and awards its XP
// once. Repeat calls report the stored progress and award nothing.
func (ls *learningService) CompleteLesson(ctx context.Context, lessonID uuid.UUID, in CompleteLessonInput) (*LessonCompletion, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, apierr.Validation("invalid_score", "score must be between 0 and 100")
	}
	if in.TimeSpent < 0 {
		return nil, apierr.Validation("invalid_time_spent", "time_spent must not be negative")
	}

	out := &LessonCompletion{}
	err = ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		lesson, err := ls.lessonRepo.GetByID(dbc, lessonID)
		if err != nil {
			return fmt.Errorf("load lesson: %w", err)
		}
		if lesson == nil {
			return apierr.NotFound("lesson_not_found", "Lesson not found")
		}
		out.Lesson = lesson

		progress, err := ls.progressRepo.GetOrCreateForUpdate(dbc, userID, lessonID)
		if err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}
		if progress.Completed {
			user, err := ls.userRepo.GetByID(dbc, userID)
			if err != nil {
				return fmt.Errorf("load user: %w", err)
			}
			if user == nil {
				return apierr.NotFound("user_not_found", "User not found")
			}
			out.Status = LessonStatusAlreadyCompleted
			out.AlreadyCompleted = true
			out.UserXP = int64(user.XP)
			out.Progress = progress
			return nil
		}

		now := ls.clock.Now().UTC()
		if err := ls.progressRepo.MarkCompleted(dbc, progress.ID, in.Score, in.TimeSpent, now); err != nil {
			return fmt.Errorf("mark lesson completed: %w", err)
		}
		reward := awardableXP(lesson.XPReward)
		total, err := ls.userRepo.AddXP(dbc, userID, reward)
		if err != nil {
			return fmt.Errorf("award lesson xp: %w", err)
		}
		progress.Completed = true
		progress.Score = in.Score
		progress.TimeSpent = in.TimeSpent
		progress.CompletedAt = &now

		out.Status = LessonStatusCompleted
		out.XPGained = reward
		out.UserXP = total
		out.Progress = progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.AlreadyCompleted {
		return out, nil
	}

	ls.metrics.IncLessonCompleted()
	if out.XPGained > 0 {
		ls.metrics.ObserveXP(XPSourceLesson, out.XPGained)
		if ls.xp != nil {
			ls.xp.RecordXP(ctx, userID, out.UserXP)
		}
		ls.notify.XPAwarded(ctx, userID, XPSourceLesson, out.XPGained, out.UserXP)
	}
	if ls.achievements != nil {
		unlocked, aErr := ls.achievements.EvaluateAchievements(ctx, userID)
		if aErr != nil {
			ls.log.Warn("Achievement evaluation failed", "user_id", userID, "error", aErr)
		}
		out.AchievementsUnlocked = unlocked
	}
	return out, nil
}
