package models

import "time"

// Tag labels posts. Slug is derived deterministically from Name so that
// upsert-by-slug stays idempotent; see utils.Slugify.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Slug      string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	Posts     []Post    `gorm:"many2many:post_tags;" json:"-"`
}
