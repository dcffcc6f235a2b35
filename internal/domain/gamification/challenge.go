package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChallengeDifficulty string

const (
	ChallengeEasy   ChallengeDifficulty = "easy"
	ChallengeMedium ChallengeDifficulty = "medium"
	ChallengeHard   ChallengeDifficulty = "hard"
)

func (d ChallengeDifficulty) Valid() bool {
	switch d {
	case ChallengeEasy, ChallengeMedium, ChallengeHard:
		return true
	}
	return false
}

type ChallengeType string

const (
	ChallengeQuiz     ChallengeType = "quiz"
	ChallengeCode     ChallengeType = "code"
	ChallengeReading  ChallengeType = "reading"
	ChallengePractice ChallengeType = "practice"
)

func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeQuiz, ChallengeCode, ChallengeReading, ChallengePractice:
		return true
	}
	return false
}

type DailyChallenge struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string              `gorm:"column:title;not null" json:"title"`
	Description    string              `gorm:"column:description;type:text" json:"description"`
	Difficulty     ChallengeDifficulty `gorm:"column:difficulty;not null" json:"difficulty"`
	Type           ChallengeType       `gorm:"column:type;not null" json:"type"`
	Content        datatypes.JSONMap   `gorm:"column:content" json:"content"`
	XPReward       int                 `gorm:"column:xp_reward;not null" json:"xp_reward"`
	AvailableUntil time.Time           `gorm:"column:available_until;not null;index" json:"available_until"`
	CreatedAt      time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"not null" json:"updated_at"`
}

func (DailyChallenge) TableName() string { return "daily_challenges" }

func (c *DailyChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Difficulty == "" {
		c.Difficulty = ChallengeMedium
	}
	if c.Content == nil {
		c.Content = datatypes.JSONMap{}
	}
	c.AvailableUntil = c.AvailableUntil.UTC()
	return nil
}

// AvailableAt reports whether the challenge is still open at now.
func (c *DailyChallenge) AvailableAt(now time.Time) bool {
	return c != nil && !c.AvailableUntil.Before(now)
}
