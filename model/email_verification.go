package model

import (
	"time"

	"gorm.io/gorm"
)

// EmailVerificationToken stores one-time email verification tokens, hashed
// the same way as password reset tokens.
type EmailVerificationToken struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	TokenHash string         `gorm:"uniqueIndex;not null;type:varchar(64)" json:"-"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for EmailVerificationToken
func (EmailVerificationToken) TableName() string {
	return "email_verification_tokens"
}

// IsExpired checks if the verification token has expired
func (e *EmailVerificationToken) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// IsUsed checks if the verification token has been used
func (e *EmailVerificationToken) IsUsed() bool {
	return e.UsedAt != nil
}

// MarkAsUsed marks the token as used
func (e *EmailVerificationToken) MarkAsUsed() {
	now := time.Now()
	e.UsedAt = &now
}
