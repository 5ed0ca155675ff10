package models

import "time"

// Badge is an achievement with an award rule. CriteriaType and
// CriteriaThreshold form the {type, threshold} rule; types the evaluator does
// not recognize are inert and can only be awarded manually by a parent.
type Badge struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description       string    `gorm:"size:255" json:"description"`
	Icon              string    `gorm:"size:64" json:"icon"`
	CriteriaType      string    `gorm:"size:32" json:"criteria_type"`
	CriteriaThreshold int       `json:"criteria_threshold"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserBadge records a badge award. The composite unique index is the
// at-most-once guarantee: awards are written with an ignore-duplicates upsert
// against (user_id, badge_id), so concurrent evaluations cannot double-award.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_user_badge,unique;not null" json:"user_id"`
	BadgeID   uint      `gorm:"index:idx_user_badge,unique;not null" json:"badge_id"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
	Badge     Badge     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"badge"`
}
