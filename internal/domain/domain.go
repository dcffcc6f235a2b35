package domain

import (
	"github.com/yungbote/skillquest-backend/internal/domain/auth"
	"github.com/yungbote/skillquest-backend/internal/domain/gamification"
	"github.com/yungbote/skillquest-backend/internal/domain/learning"
	"github.com/yungbote/skillquest-backend/internal/domain/user"
)

type User = user.User
type LearningSpeed = user.LearningSpeed
type LearningStyle = user.LearningStyle

const (
	LearningSpeedSlow   = user.LearningSpeedSlow
	LearningSpeedMedium = user.LearningSpeedMedium
	LearningSpeedFast   = user.LearningSpeedFast

	LearningStyleVisual      = user.LearningStyleVisual
	LearningStylePractical   = user.LearningStylePractical
	LearningStyleTheoretical = user.LearningStyleTheoretical
)

type UserToken = auth.UserToken

type LearningPath = learning.LearningPath
type PathLevel = learning.PathLevel
type Module = learning.Module
type Lesson = learning.Lesson
type LessonType = learning.LessonType
type UserProgress = learning.UserProgress

type Achievement = gamification.Achievement
type UserAchievement = gamification.UserAchievement
type Streak = gamification.Streak
type StreakTransition = gamification.StreakTransition
type DailyChallenge = gamification.DailyChallenge
type ChallengeDifficulty = gamification.ChallengeDifficulty
type ChallengeType = gamification.ChallengeType

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserToken{},
		&LearningPath{},
		&Module{},
		&Lesson{},
		&UserProgress{},
		&Achievement{},
		&UserAchievement{},
		&Streak{},
		&DailyChallenge{},
	}
}
