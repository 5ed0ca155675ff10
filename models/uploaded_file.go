package models

import "time"

// UploadedFile records locally stored uploads so the background cleaner can
// remove files that were never attached to a post or avatar.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"` // filesystem path
	URL       string    `gorm:"size:1024;not null" json:"url"`       // public URL like /static/uploads/...
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
