package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PathLevel string

const (
	PathLevelBeginner     PathLevel = "beginner"
	PathLevelIntermediate PathLevel = "intermediate"
	PathLevelAdvanced     PathLevel = "advanced"
)

func (l PathLevel) Valid() bool {
	switch l {
	case PathLevelBeginner, PathLevelIntermediate, PathLevelAdvanced:
		return true
	}
	return false
}

type LearningPath struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Icon        string    `gorm:"column:icon" json:"icon"`
	Level       PathLevel `gorm:"column:level;not null;index" json:"level"`
	AgeRange    string    `gorm:"column:age_range" json:"age_range"`

	Modules []*Module `gorm:"foreignKey:LearningPathID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningPath) TableName() string { return "learning_paths" }

func (p *LearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Level == "" {
		p.Level = PathLevelBeginner
	}
	return nil
}

// Module is an ordered section of a LearningPath. Order is unique within the
// path and is stored as sort_order.
type Module struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	LearningPathID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_module_path_order,priority:1" json:"learning_path_id"`
	LearningPath   *LearningPath `gorm:"foreignKey:LearningPathID;references:ID" json:"-"`
	Title          string        `gorm:"column:title;not null" json:"title"`
	Description    string        `gorm:"column:description;type:text" json:"description"`
	Icon           string        `gorm:"column:icon" json:"icon"`
	Order          int           `gorm:"column:sort_order;not null;uniqueIndex:idx_module_path_order,priority:2" json:"order"`

	Lessons []*Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "modules" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
