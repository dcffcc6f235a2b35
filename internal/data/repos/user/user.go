package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

var ErrNegativeXP = errors.New("xp amount must not be negative")

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	GetByIdentifier(dbc dbctx.Context, identifier string) (*types.User, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	AddXP(dbc dbctx.Context, userID uuid.UUID, amount int) (int64, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
	TopByXP(dbc dbctx.Context, limit int) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var u types.User
	if err := dbc.DB(ur.db).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.DB(ur.db).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIdentifier matches a username exactly or an email case-insensitively.
func (ur *userRepo) GetByIdentifier(dbc dbctx.Context, identifier string) (*types.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	var u types.User
	err := dbc.DB(ur.db).
		Where("username = ? OR LOWER(email) = ?", identifier, strings.ToLower(identifier)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	var n int64
	if err := dbc.DB(ur.db).Model(&types.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var n int64
	if err := dbc.DB(ur.db).Model(&types.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddXP increments xp in a single UPDATE and returns the new total.
// Negative amounts are rejected with ErrNegativeXP.
func (ur *userRepo) AddXP(dbc dbctx.Context, userID uuid.UUID, amount int) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeXP
	}
	tx := dbc.DB(ur.db)
	res := tx.Model(&types.User{}).
		Where("id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var xp int64
	if err := tx.Model(&types.User{}).Where("id = ?", userID).Pluck("xp", &xp).Error; err != nil {
		return 0, err
	}
	return xp, nil
}

func (ur *userRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(ur.db).Model(&types.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ur *userRepo) TopByXP(dbc dbctx.Context, limit int) ([]*types.User, error) {
	var results []*types.User
	if limit <= 0 {
		return results, nil
	}
	if err := dbc.DB(ur.db).
		Order("xp DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
