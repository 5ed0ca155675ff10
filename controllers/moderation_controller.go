package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// ModerationController exposes the parent review queue. Every route here sits
// behind ParentRequired.
type ModerationController struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

// NewModerationController creates a new controller instance.
func NewModerationController(db *gorm.DB, moderation *services.ModerationService) *ModerationController {
	return &ModerationController{db: db, moderation: moderation}
}

// PendingPosts lists posts waiting for review, oldest first.
func (m *ModerationController) PendingPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var posts []models.Post
	var total int64
	q := m.db.Where("status = ?", models.StatusPending).Preload("User").Preload("Tags").Order("updated_at")
	if err := q.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to count pending posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list pending posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// PendingComments lists comments waiting for review, oldest first.
func (m *ModerationController) PendingComments(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var comments []models.Comment
	var total int64
	q := m.db.Where("status = ?", models.StatusPending).Preload("User").Order("created_at")
	if err := q.Model(&models.Comment{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to count pending comments")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to list pending comments")
		return
	}
	utils.Success(ctx, gin.H{
		"items":      comments,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// ApprovePost publishes a pending post and reports badges the approval earned.
func (m *ModerationController) ApprovePost(ctx *gin.Context) {
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid post id")
		return
	}

	post, awarded, err := m.moderation.ApprovePost(postID)
	if err != nil {
		respondModerationError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.CacheDelete(postDetailKey(post.ID))
	utils.Success(ctx, gin.H{"post": post, "new_badges": awarded})
}

// RejectPost declines a pending post.
func (m *ModerationController) RejectPost(ctx *gin.Context) {
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid post id")
		return
	}

	post, err := m.moderation.RejectPost(postID)
	if err != nil {
		respondModerationError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// ReopenPost sends an already-reviewed post back to the queue.
func (m *ModerationController) ReopenPost(ctx *gin.Context) {
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid post id")
		return
	}

	post, err := m.moderation.ReopenPost(postID)
	if err != nil {
		respondModerationError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.CacheDelete(postDetailKey(post.ID))
	utils.Success(ctx, gin.H{"post": post})
}

// ApproveComment publishes a pending comment.
func (m *ModerationController) ApproveComment(ctx *gin.Context) {
	commentID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid comment id")
		return
	}

	comment, err := m.moderation.ApproveComment(commentID)
	if err != nil {
		respondModerationError(ctx, err)
		return
	}
	utils.CacheDelete(postDetailKey(comment.PostID))
	utils.Success(ctx, gin.H{"comment": comment})
}

// RejectComment hides a pending comment.
func (m *ModerationController) RejectComment(ctx *gin.Context) {
	commentID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid comment id")
		return
	}

	comment, err := m.moderation.RejectComment(commentID)
	if err != nil {
		respondModerationError(ctx, err)
		return
	}
	utils.CacheDelete(postDetailKey(comment.PostID))
	utils.Success(ctx, gin.H{"comment": comment})
}

func respondModerationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40430, "not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40330, "not allowed")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.Error(ctx, http.StatusConflict, 40930, "invalid status transition")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50044, "moderation action failed")
	}
}
