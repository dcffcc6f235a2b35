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

type StreakRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Streak, error)
	// GetOrCreateForUpdate locks the user's streak row inside dbc's
	// transaction. When no row existed one is inserted dated today and
	// created is true.
	GetOrCreateForUpdate(dbc dbctx.Context, userID uuid.UUID, today time.Time) (row *types.Streak, created bool, err error)
	Save(dbc dbctx.Context, row *types.Streak) error
}

type streakRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return &streakRepo{db: db, log: baseLog.With("repo", "StreakRepo")}
}

func (r *streakRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Streak, error) {
	var out []*types.Streak
	if userID == uuid.Nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *streakRepo) GetOrCreateForUpdate(dbc dbctx.Context, userID uuid.UUID, today time.Time) (*types.Streak, bool, error) {
	t := dbc.DB(r.db)

	fresh := &types.Streak{UserID: userID, LastActivityDate: today}
	res := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(fresh)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1

	var locked types.Streak
	if err := t.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&locked).Error; err != nil {
		return nil, false, err
	}
	return &locked, created, nil
}

func (r *streakRepo) Save(dbc dbctx.Context, row *types.Streak) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Streak{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"current_streak":       row.CurrentStreak,
			"longest_streak":       row.LongestStreak,
			"last_activity_date":   row.LastActivityDate,
			"protection_available": row.ProtectionAvailable,
		}).Error
}
