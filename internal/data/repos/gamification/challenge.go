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

type DailyChallengeRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.DailyChallenge) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DailyChallenge, error)
	// ListAvailable returns challenges with available_until >= now, soonest first.
	ListAvailable(dbc dbctx.Context, now time.Time) ([]*types.DailyChallenge, error)
}

type dailyChallengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyChallengeRepo(db *gorm.DB, baseLog *logger.Logger) DailyChallengeRepo {
	return &dailyChallengeRepo{db: db, log: baseLog.With("repo", "DailyChallengeRepo")}
}

func (r *dailyChallengeRepo) Upsert(dbc dbctx.Context, rows []*types.DailyChallenge) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "difficulty", "type", "content",
				"xp_reward", "available_until", "updated_at",
			}),
		}).
		Create(&rows).Error
}

func (r *dailyChallengeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DailyChallenge, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.DailyChallenge
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *dailyChallengeRepo) ListAvailable(dbc dbctx.Context, now time.Time) ([]*types.DailyChallenge, error) {
	var out []*types.DailyChallenge
	if err := dbc.DB(r.db).
		Where("available_until >= ?", now.UTC()).
		Order("available_until ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
