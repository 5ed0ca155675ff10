package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// BadgeController serves the badge catalog, per-user badge cases, progress
// checks and the parent-only manual award / catalog editing endpoints.
type BadgeController struct {
	db        *gorm.DB
	evaluator *services.BadgeEvaluator
}

// NewBadgeController creates a new controller instance.
func NewBadgeController(db *gorm.DB, evaluator *services.BadgeEvaluator) *BadgeController {
	return &BadgeController{db: db, evaluator: evaluator}
}

// ListBadges returns the full badge catalog.
func (b *BadgeController) ListBadges(ctx *gin.Context) {
	var badges []models.Badge
	if err := b.db.Order("id").Find(&badges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list badges")
		return
	}
	utils.Success(ctx, gin.H{"items": badges})
}

// MyBadges returns the authenticated user's earned badges.
func (b *BadgeController) MyBadges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var earned []models.UserBadge
	if err := b.db.Preload("Badge").Where("user_id = ?", userID).Order("awarded_at").Find(&earned).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load badges")
		return
	}
	utils.Success(ctx, gin.H{"items": earned})
}

// MyProgress reports the current metric values behind each tracked criteria.
func (b *BadgeController) MyProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	progress, err := b.evaluator.Progress(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to compute progress")
		return
	}
	utils.Success(ctx, gin.H{"progress": progress})
}

// Evaluate runs the badge evaluator for the authenticated user and returns
// any newly awarded badges. Safe to call repeatedly.
func (b *BadgeController) Evaluate(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	awarded, err := b.evaluator.Evaluate(userID)
	if err != nil {
		// Partial awards may have landed; return them alongside the error signal.
		utils.Respond(ctx, http.StatusInternalServerError, 50063, "badge evaluation incomplete", gin.H{"new_badges": awarded})
		return
	}
	utils.Success(ctx, gin.H{"new_badges": awarded})
}

// AwardBadge grants a badge to a user manually. Parent only; this is the only
// path for badges whose criteria the evaluator does not track.
func (b *BadgeController) AwardBadge(ctx *gin.Context) {
	var req struct {
		UserID  uint `json:"user_id" binding:"required"`
		BadgeID uint `json:"badge_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	inserted, err := b.evaluator.Award(req.UserID, req.BadgeID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "user or badge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to award badge")
		return
	}
	utils.Success(ctx, gin.H{"awarded": inserted})
}

// CreateBadge adds a badge to the catalog. Parent only. Unknown criteria
// types are allowed and simply never auto-award.
func (b *BadgeController) CreateBadge(ctx *gin.Context) {
	var req struct {
		Name              string `json:"name" binding:"required,min=1,max=64"`
		Description       string `json:"description" binding:"max=255"`
		Icon              string `json:"icon" binding:"max=64"`
		CriteriaType      string `json:"criteria_type" binding:"max=32"`
		CriteriaThreshold int    `json:"criteria_threshold"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid request payload")
		return
	}
	if req.CriteriaThreshold < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40062, "criteria threshold cannot be negative")
		return
	}

	badge := models.Badge{
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		Icon:              strings.TrimSpace(req.Icon),
		CriteriaType:      strings.TrimSpace(req.CriteriaType),
		CriteriaThreshold: req.CriteriaThreshold,
	}
	if err := b.db.Create(&badge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to create badge")
		return
	}

	b.evaluator.InvalidateCatalog()
	utils.Success(ctx, gin.H{"badge": badge, "tracked": services.TrackedCriteria(badge.CriteriaType)})
}

// DeleteBadge removes a badge and its award rows. Parent only.
func (b *BadgeController) DeleteBadge(ctx *gin.Context) {
	badgeID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid badge id")
		return
	}

	if err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("badge_id = ?", badgeID).Delete(&models.UserBadge{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Badge{}, badgeID).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to delete badge")
		return
	}

	b.evaluator.InvalidateCatalog()
	utils.Success(ctx, gin.H{"message": "badge deleted"})
}
