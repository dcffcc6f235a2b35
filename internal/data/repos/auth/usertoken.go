package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error)
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := dbc.DB(utr.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error) {
	return utr.first(dbc, "access_token = ?", accessToken)
}

func (utr *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error) {
	return utr.first(dbc, "refresh_token = ?", refreshToken)
}

func (utr *userTokenRepo) first(dbc dbctx.Context, query string, value string) (*types.UserToken, error) {
	if value == "" {
		return nil, nil
	}
	var tok types.UserToken
	if err := dbc.DB(utr.db).Where(query, value).First(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tok, nil
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	var results []*types.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(utr.db).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return dbc.DB(utr.db).
		Where("id IN ?", tokenIDs).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.DB(utr.db).
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}

// DeleteExpired removes every session whose refresh window closed before now.
func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.DB(utr.db).
		Where("expires_at < ?", now.UTC()).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		utr.log.Info("Deleted expired user tokens", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
