package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSession backs one session cookie. ID is the token's jti; a session is
// active while it is unrevoked and unexpired.
type UserSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string     `gorm:"index;not null;column:user_id" json:"user_id"`
	Email     string     `gorm:"column:email" json:"email"`
	ExpiresAt time.Time  `gorm:"not null;index;column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserSession) TableName() string { return "user_session" }

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *UserSession) Active(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
