package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/utils"
)

// StartDailyDigest launches a background loop that emails parents a summary
// of pending reviews once per interval. Best-effort: failures are logged and
// the loop keeps going.
func StartDailyDigest(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		for {
			time.Sleep(interval)

			var pendingPosts, pendingComments int64
			if err := db.Model(&models.Post{}).Where("status = ?", models.StatusPending).Count(&pendingPosts).Error; err != nil {
				utils.Sugar.Warnf("digest: counting pending posts failed: %v", err)
				continue
			}
			if err := db.Model(&models.Comment{}).Where("status = ?", models.StatusPending).Count(&pendingComments).Error; err != nil {
				utils.Sugar.Warnf("digest: counting pending comments failed: %v", err)
				continue
			}
			if pendingPosts == 0 && pendingComments == 0 {
				continue
			}

			var parents []models.User
			if err := db.Where("role = ? AND email <> ''", models.RoleParent).Find(&parents).Error; err != nil {
				utils.Sugar.Warnf("digest: loading parents failed: %v", err)
				continue
			}
			subject := fmt.Sprintf("%s: %d post(s) and %d comment(s) waiting for review",
				config.Get().SiteTitle, pendingPosts, pendingComments)
			body := "There is new content waiting for your review. Log in to approve or reject it."
			for _, p := range parents {
				utils.NotifyAsync(p.Email, subject, body)
			}
		}
	}()
}
