package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgress records a user's state on one lesson. There is at most one row
// per (user_id, lesson_id); CompletedAt is written once.
type UserProgress struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson,priority:1" json:"user_id"`
	LessonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson,priority:2;index" json:"lesson_id"`
	Lesson   *Lesson   `gorm:"foreignKey:LessonID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Completed bool     `gorm:"column:completed;not null" json:"completed"`
	Score     *float64 `gorm:"column:score" json:"score"`
	// TimeSpent is in seconds.
	TimeSpent   int        `gorm:"column:time_spent;not null" json:"time_spent"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Percentage is completed/total*100, or 0 for an empty path.
func Percentage(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
