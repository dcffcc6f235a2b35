package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type UserProgressRepo interface {
	// GetOrCreateForUpdate returns the (user, lesson) row, inserting an empty
	// one if needed, locked for the rest of the transaction in dbc.
	GetOrCreateForUpdate(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.UserProgress, error)
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, score *float64, timeSpent int, at time.Time) error
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountCompletedInPath(dbc dbctx.Context, userID, pathID uuid.UUID) (int64, error)
	// CompletedPathIDs lists non-empty paths whose every lesson the user completed.
	CompletedPathIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (r *userProgressRepo) GetOrCreateForUpdate(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.UserProgress, error) {
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return nil, errors.New("user_id and lesson_id required")
	}
	t := dbc.DB(r.db)

	row := &types.UserProgress{UserID: userID, LessonID: lessonID}
	if err := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return nil, err
	}

	var locked types.UserProgress
	if err := t.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&locked).Error; err != nil {
		return nil, err
	}
	return &locked, nil
}

func (r *userProgressRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, score *float64, timeSpent int, at time.Time) error {
	res := dbc.DB(r.db).
		Model(&types.UserProgress{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"score":        score,
			"time_spent":   timeSpent,
			"completed_at": at.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userProgressRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&n).Error
	return n, err
}

func (r *userProgressRepo) CountCompletedInPath(dbc dbctx.Context, userID, pathID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.UserProgress{}).
		Joins("JOIN lessons ON lessons.id = user_progress.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("user_progress.user_id = ? AND user_progress.completed = ? AND modules.learning_path_id = ?", userID, true, pathID).
		Count(&n).Error
	return n, err
}

type pathCompletionRow struct {
	PathID uuid.UUID
	Total  int64
	Done   int64
}

func (r *userProgressRepo) CompletedPathIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var rows []pathCompletionRow
	err := dbc.DB(r.db).
		Table("lessons").
		Select("modules.learning_path_id AS path_id, COUNT(lessons.id) AS total, "+
			"SUM(CASE WHEN user_progress.completed = ? THEN 1 ELSE 0 END) AS done", true).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Joins("LEFT JOIN user_progress ON user_progress.lesson_id = lessons.id AND user_progress.user_id = ?", userID).
		Group("modules.learning_path_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.Total > 0 && row.Done >= row.Total {
			out = append(out, row.PathID)
		}
	}
	return out, nil
}
