package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/data/repos/auth"
	"github.com/yungbote/skillquest-backend/internal/data/repos/gamification"
	"github.com/yungbote/skillquest-backend/internal/data/repos/learning"
	"github.com/yungbote/skillquest-backend/internal/data/repos/user"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type LearningPathRepo = learning.LearningPathRepo
type ModuleRepo = learning.ModuleRepo
type LessonRepo = learning.LessonRepo
type UserProgressRepo = learning.UserProgressRepo

type AchievementRepo = gamification.AchievementRepo
type UserAchievementRepo = gamification.UserAchievementRepo
type StreakRepo = gamification.StreakRepo
type DailyChallengeRepo = gamification.DailyChallengeRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return learning.NewLearningPathRepo(db, baseLog)
}
func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return learning.NewModuleRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return learning.NewUserProgressRepo(db, baseLog)
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return gamification.NewAchievementRepo(db, baseLog)
}
func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return gamification.NewUserAchievementRepo(db, baseLog)
}
func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return gamification.NewStreakRepo(db, baseLog)
}
func NewDailyChallengeRepo(db *gorm.DB, baseLog *logger.Logger) DailyChallengeRepo {
	return gamification.NewDailyChallengeRepo(db, baseLog)
}
