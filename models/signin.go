package models

import "time"

// SignIn stores daily sign-in records used for XP rewards and streaks.
type SignIn struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	SigninDate     time.Time `gorm:"index;not null" json:"signin_date"`
	XPAwarded      int       `gorm:"column:xp_awarded" json:"xp_awarded"`
	StreakAchieved int       `json:"streak_achieved"`
	CreatedAt      time.Time `json:"created_at"`
}
