package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/data/repos"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	LearningPath    repos.LearningPathRepo
	Module          repos.ModuleRepo
	Lesson          repos.LessonRepo
	UserProgress    repos.UserProgressRepo
	Achievement     repos.AchievementRepo
	UserAchievement repos.UserAchievementRepo
	Streak          repos.StreakRepo
	DailyChallenge  repos.DailyChallengeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		LearningPath:    repos.NewLearningPathRepo(db, log),
		Module:          repos.NewModuleRepo(db, log),
		Lesson:          repos.NewLessonRepo(db, log),
		UserProgress:    repos.NewUserProgressRepo(db, log),
		Achievement:     repos.NewAchievementRepo(db, log),
		UserAchievement: repos.NewUserAchievementRepo(db, log),
		Streak:          repos.NewStreakRepo(db, log),
		DailyChallenge:  repos.NewDailyChallengeRepo(db, log),
	}
}
