package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LessonType string

const (
	LessonTypeVideo       LessonType = "video"
	LessonTypeInteractive LessonType = "interactive"
	LessonTypeQuiz        LessonType = "quiz"
	LessonTypeProject     LessonType = "project"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonTypeVideo, LessonTypeInteractive, LessonTypeQuiz, LessonTypeProject:
		return true
	}
	return false
}

const DefaultLessonDifficulty = 1.0

type Lesson struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_lesson_module_order,priority:1" json:"module_id"`
	Module      *Module           `gorm:"foreignKey:ModuleID;references:ID" json:"-"`
	Title       string            `gorm:"column:title;not null" json:"title"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Type        LessonType        `gorm:"column:type;not null" json:"type"`
	Content     datatypes.JSONMap `gorm:"column:content" json:"content"`
	// Duration is in minutes.
	Duration   int     `gorm:"column:duration;not null" json:"duration"`
	XPReward   int     `gorm:"column:xp_reward;not null" json:"xp_reward"`
	Difficulty float64 `gorm:"column:difficulty;not null" json:"difficulty"`
	Order      int     `gorm:"column:sort_order;not null;index:idx_lesson_module_order,priority:2" json:"order"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Difficulty == 0 {
		l.Difficulty = DefaultLessonDifficulty
	}
	if l.Type == "" {
		l.Type = LessonTypeInteractive
	}
	if l.Content == nil {
		l.Content = datatypes.JSONMap{}
	}
	return nil
}
