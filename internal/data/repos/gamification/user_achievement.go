package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type UserAchievementRepo interface {
	// Unlock inserts the pair once; inserted is false when it already existed.
	Unlock(dbc dbctx.Context, userID, achievementID uuid.UUID, at time.Time) (inserted bool, err error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	UnlockedIDs(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) Unlock(dbc dbctx.Context, userID, achievementID uuid.UUID, at time.Time) (bool, error) {
	row := &types.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    at.UTC(),
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	var out []*types.UserAchievement
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) UnlockedIDs(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
