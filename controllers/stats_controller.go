package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/utils"
)

// StatsController serves the family dashboard numbers.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new controller instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// SiteStats returns site-wide totals, cached briefly in Redis since the
// dashboard polls it.
func (s *StatsController) SiteStats(ctx *gin.Context) {
	const cacheKey = "cache:stats:site"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var publishedPosts, pendingPosts, comments, badgesAwarded, members int64
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&publishedPosts, s.db.Model(&models.Post{}).Where("status = ?", models.StatusApproved)},
		{&pendingPosts, s.db.Model(&models.Post{}).Where("status = ?", models.StatusPending)},
		{&comments, s.db.Model(&models.Comment{}).Where("status = ?", models.StatusApproved)},
		{&badgesAwarded, s.db.Model(&models.UserBadge{})},
		{&members, s.db.Model(&models.User{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to compute stats")
			return
		}
	}

	var todayViews int64
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.PageView{}).
		Select("COALESCE(SUM(count), 0)").
		Where("date >= ?", todayStart).
		Scan(&todayViews).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to compute page views")
		return
	}

	payload := gin.H{
		"published_posts": publishedPosts,
		"pending_posts":   pendingPosts,
		"comments":        comments,
		"badges_awarded":  badgesAwarded,
		"members":         members,
		"views_today":     todayViews,
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// PageViewHistory returns per-day view totals for the last N days (default 30).
func (s *StatsController) PageViewHistory(ctx *gin.Context) {
	days := 30
	if v := ctx.Query("days"); v != "" {
		if parsed, err := parseID(v); err == nil && parsed > 0 && parsed <= 365 {
			days = int(parsed)
		}
	}

	since := time.Now().AddDate(0, 0, -days)
	type dayRow struct {
		Date  time.Time `json:"date"`
		Views int64     `json:"views"`
	}
	var rows []dayRow
	if err := s.db.Model(&models.PageView{}).
		Select("date, SUM(count) AS views").
		Where("date >= ?", since).
		Group("date").
		Order("date").
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load page view history")
		return
	}
	utils.Success(ctx, gin.H{"items": rows})
}
