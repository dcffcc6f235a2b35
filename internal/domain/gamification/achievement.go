package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Achievement is an immutable catalog entry. Criteria is an opaque document
// interpreted by ParseCriteria when achievements are evaluated.
type Achievement struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string            `gorm:"column:title;not null;index" json:"title"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Icon        string            `gorm:"column:icon" json:"icon"`
	Criteria    datatypes.JSONMap `gorm:"column:criteria" json:"criteria"`
	XPReward    int               `gorm:"column:xp_reward;not null" json:"xp_reward"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievements" }

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Criteria == nil {
		a.Criteria = datatypes.JSONMap{}
	}
	return nil
}

type UserAchievement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID;references:ID;constraint:OnDelete:CASCADE" json:"achievement,omitempty"`
	UnlockedAt    time.Time    `gorm:"column:unlocked_at;not null;index" json:"unlocked_at"`
}

func (UserAchievement) TableName() string { return "user_achievements" }

func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	if ua.UnlockedAt.IsZero() {
		ua.UnlockedAt = time.Now().UTC()
	}
	return nil
}
