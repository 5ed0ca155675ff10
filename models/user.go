package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles gate moderation and admin surfaces. Parents review, children write.
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User represents a family member account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"size:255" json:"email"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:16;default:'child'" json:"role"`
	DisplayName     string         `gorm:"size:64" json:"display_name"`
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	XP              int            `gorm:"column:xp;default:0" json:"xp"`
	LastSigninAt    *time.Time     `json:"last_signin_at"`
	ConsecutiveDays int            `gorm:"default:0" json:"consecutive_days"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Comments        []Comment      `json:"-"`
	Posts           []Post         `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// IsParent reports whether the user holds the reviewing role.
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}
