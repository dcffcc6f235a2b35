package gamification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type AchievementRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Achievement) error
	List(dbc dbctx.Context) ([]*types.Achievement, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Upsert(dbc dbctx.Context, rows []*types.Achievement) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "icon", "criteria", "xp_reward", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *achievementRepo) List(dbc dbctx.Context) ([]*types.Achievement, error) {
	var out []*types.Achievement
	if err := dbc.DB(r.db).Order("title ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Achievement, error) {
	var out []*types.Achievement
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
