package models

import "time"

// Moderation statuses shared by posts and comments.
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Post represents a story written by a child, visible publicly only once approved.
// Content holds the author's markdown; ContentHTML is the sanitized render of it
// (or of author-supplied HTML) and is what gets served.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ContentHTML string     `gorm:"column:content_html;type:text" json:"content_html"`
	Excerpt     string     `gorm:"size:255" json:"excerpt"`
	ImageURL    string     `gorm:"size:512" json:"image_url"`
	Status      string     `gorm:"size:16;index;default:'draft'" json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments    []Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
	Tags        []Tag      `gorm:"many2many:post_tags;" json:"tags"`
}

// IsPublic reports whether the post has passed review.
func (p *Post) IsPublic() bool {
	return p.Status == StatusApproved
}

// ValidStatus reports whether s is a known moderation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
