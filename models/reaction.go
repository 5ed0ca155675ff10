package models

import "time"

// Reaction target types.
const (
	ReactionTargetPost = "post"
)

// Reaction stores one anonymous emoji toggle on a post. ID is a deterministic
// UUID derived from (post id, kind) so that repeated toggles from the site's
// anonymous like buttons always address the same logical row; see
// services.ReactionID. UserID is set only for signed-in reactions.
type Reaction struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TargetType string    `gorm:"size:16;index;not null" json:"target_type"`
	TargetID   string    `gorm:"size:36;index;not null" json:"target_id"`
	Kind       string    `gorm:"size:16;not null" json:"kind"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
