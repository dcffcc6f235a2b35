package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/data/repos"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

// UpdatePreferencesInput carries the optional preference fields; nil leaves
// the stored value alone.
type UpdatePreferencesInput struct {
	LearningSpeed          *string
	PreferredLearningStyle *string
	DailyGoal              *int
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdatePreferences(ctx context.Context, in UpdatePreferencesInput) (*types.User, error)
	UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	user, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	return user, nil
}

func (us *userService) UpdatePreferences(ctx context.Context, in UpdatePreferencesInput) (*types.User, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	var out *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, err := us.userRepo.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return apierr.NotFound("user_not_found", "User not found")
		}
		if err := applyPreferences(user, in.LearningSpeed, in.PreferredLearningStyle, in.DailyGoal); err != nil {
			return err
		}
		if err := us.userRepo.UpdateFields(dbc, user.ID, map[string]interface{}{
			"learning_speed":           user.LearningSpeed,
			"preferred_learning_style": user.PreferredLearningStyle,
			"daily_goal":               user.DailyGoal,
		}); err != nil {
			return fmt.Errorf("update preferences: %w", err)
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apierr.Validation("invalid_image", "Avatar image is empty")
	}
	dbc := dbctx.Context{Ctx: ctx}
	user, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	if err := us.avatarService.CreateAndUploadUserAvatarFromImage(dbc, user, raw); err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateFields(dbc, user.ID, map[string]interface{}{
		"avatar_bucket_key": user.AvatarBucketKey,
		"avatar_url":        user.AvatarURL,
	}); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}
	us.log.Info("Avatar updated", "user_id", user.ID)
	return user, nil
}

func requireUserID(ctx context.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, apierr.Unauthenticated("unauthorized", "Authentication credentials were not provided")
	}
	return userID, nil
}
