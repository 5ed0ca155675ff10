package utils

import (
	"os"
	"time"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/models"
)

// StartUploadCleaner launches a background goroutine that periodically
// removes expired uploads never attached to a post image or avatar. It is
// best-effort and logs failures.
func StartUploadCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("expire_at <= ?", time.Now()).Limit(100).Find(&items).Error; err != nil {
				Sugar.Warnf("upload cleaner query failed: %v", err)
				continue
			}
			for _, it := range items {
				var refs int64
				db.Model(&models.Post{}).Where("image_url = ?", it.URL).Count(&refs)
				if refs == 0 {
					var avatarRefs int64
					db.Model(&models.User{}).Where("avatar_url = ?", it.URL).Count(&avatarRefs)
					refs += avatarRefs
				}
				if refs == 0 && it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Drop the row either way; referenced files no longer need tracking.
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
					Sugar.Warnf("upload cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
