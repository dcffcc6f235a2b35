package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/skillquest-backend/internal/domain/user"
	"gorm.io/gorm"
)

// UserToken is one login session: a JWT access token paired with an opaque
// refresh token. Deleting the row revokes both.
type UserToken struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	User         *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	AccessToken  string     `gorm:"uniqueIndex;not null;column:access_token" json:"-"`
	RefreshToken string     `gorm:"uniqueIndex;not null;column:refresh_token" json:"-"`
	ExpiresAt    time.Time  `gorm:"index;not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserToken) TableName() string { return "user_token" }

func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return nil
}
