package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// SiteConfig returns public site settings for the frontend: title, the notice
// bar and the reaction kinds the post page renders.
func SiteConfig(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"site_title": cfg.SiteTitle,
		"notice": gin.H{
			"title": cfg.NoticeTitle,
			"html":  utils.SanitizeHTML(cfg.NoticeHTML),
		},
		"reaction_kinds": services.KnownReactionKinds,
	})
}

// Health is the liveness probe.
func Health(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"status": "ok"})
}
