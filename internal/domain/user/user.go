package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningSpeed string

const (
	LearningSpeedSlow   LearningSpeed = "slow"
	LearningSpeedMedium LearningSpeed = "medium"
	LearningSpeedFast   LearningSpeed = "fast"
)

func (s LearningSpeed) Valid() bool {
	switch s {
	case LearningSpeedSlow, LearningSpeedMedium, LearningSpeedFast:
		return true
	}
	return false
}

type LearningStyle string

const (
	LearningStyleVisual      LearningStyle = "visual"
	LearningStylePractical   LearningStyle = "practical"
	LearningStyleTheoretical LearningStyle = "theoretical"
)

func (s LearningStyle) Valid() bool {
	switch s {
	case LearningStyleVisual, LearningStylePractical, LearningStyleTheoretical:
		return true
	}
	return false
}

const (
	DefaultLevel     = 1
	DefaultDailyGoal = 30
	// XPPerLevelStep is the XP span the client shows between levels.
	XPPerLevelStep = 500
)

type User struct {
	ID                     uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Username               string        `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email                  string        `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password               string        `gorm:"not null;column:password" json:"-"`
	AvatarBucketKey        string        `gorm:"column:avatar_bucket_key" json:"-"`
	AvatarURL              string        `gorm:"column:avatar_url" json:"avatar_url"`
	Level                  int           `gorm:"not null;column:level" json:"level"`
	XP                     int           `gorm:"not null;column:xp" json:"xp"`
	LearningSpeed          LearningSpeed `gorm:"not null;column:learning_speed" json:"learning_speed"`
	PreferredLearningStyle LearningStyle `gorm:"not null;column:preferred_learning_style" json:"preferred_learning_style"`
	DailyGoal              int           `gorm:"not null;column:daily_goal" json:"daily_goal"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// BeforeCreate assigns the id and fills account defaults so every insert path
// produces a valid row.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Level < DefaultLevel {
		u.Level = DefaultLevel
	}
	if u.XP < 0 {
		u.XP = 0
	}
	if u.LearningSpeed == "" {
		u.LearningSpeed = LearningSpeedMedium
	}
	if u.PreferredLearningStyle == "" {
		u.PreferredLearningStyle = LearningStyleVisual
	}
	if u.DailyGoal <= 0 {
		u.DailyGoal = DefaultDailyGoal
	}
	return nil
}

// XPForNextLevel mirrors the client's progress bar target.
func (u *User) XPForNextLevel() int {
	level := u.Level
	if level < DefaultLevel {
		level = DefaultLevel
	}
	return level * XPPerLevelStep
}

// Initials returns up to two letters for the generated avatar.
func (u *User) Initials() string {
	name := strings.TrimSpace(u.Username)
	if name == "" {
		return "?"
	}
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
	var out []rune
	for _, p := range parts {
		rs := []rune(p)
		if len(rs) > 0 {
			out = append(out, rs[0])
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 1 {
		if rs := []rune(parts[0]); len(rs) > 1 {
			out = append(out, rs[1])
		}
	}
	return strings.ToUpper(string(out))
}
