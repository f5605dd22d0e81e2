package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenType string

const (
	TokenVerification  TokenType = "verificacion"
	TokenPasswordReset TokenType = "reset_password"
)

// UserToken is a single-use token mailed to a user for account verification
// or password reset.
type UserToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Type      TokenType `gorm:"type:varchar(20);not null"`
	Token     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (t *UserToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
