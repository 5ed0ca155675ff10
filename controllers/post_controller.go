package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/middleware"
	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// PostController manages stories: CRUD, tagging, submit-for-review, uploads.
type PostController struct {
	db         *gorm.DB
	tags       *services.TagService
	moderation *services.ModerationService
	reactions  *services.ReactionService
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, tags *services.TagService, moderation *services.ModerationService, reactions *services.ReactionService) *PostController {
	return &PostController{db: db, tags: tags, moderation: moderation, reactions: reactions}
}

// CreatePost creates a new draft story for the authenticated author.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required,min=1"`
		Content     string   `json:"content"`
		ContentHTML string   `json:"content_html"`
		ImageURL    string   `json:"image_url"`
		Tags        []string `json:"tags"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.Content == "" && req.ContentHTML == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "content cannot be empty")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	html, text := utils.RenderContent(req.ContentHTML, req.Content)
	post := models.Post{
		UserID:      userID,
		Title:       title,
		Content:     req.Content,
		ContentHTML: html,
		Excerpt:     utils.Excerpt(text, utils.ExcerptLimit),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Status:      models.StatusDraft,
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	if len(req.Tags) > 0 {
		if err := p.tags.SetPostTags(&post, req.Tags); err != nil {
			// Tag attach is retryable by editing the post; the story itself is saved.
			utils.Sugar.Warnf("attaching tags to post %d failed: %v", post.ID, err)
		}
	}

	utils.Success(ctx, gin.H{"post": post})
}

// ListPosts returns paginated approved posts including author information.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	tag := strings.TrimSpace(ctx.Query("tag"))

	if tag != "" {
		p.listPostsByTag(ctx, tag, page, pageSize)
		return
	}

	// Cache homepage lists when no search term to avoid cache key explosion
	if search == "" {
		cacheKey := fmt.Sprintf("cache:posts:list:page=%d:size=%d", page, pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	var posts []models.Post
	var total int64

	query := p.db.Where("status = ?", models.StatusApproved).
		Preload("User").Preload("Tags").
		Order("published_at DESC")
	if search != "" {
		query = query.Where("title LIKE ? OR content LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	}
	if search == "" {
		cacheKey := fmt.Sprintf("cache:posts:list:page=%d:size=%d", page, pageSize)
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

func (p *PostController) listPostsByTag(ctx *gin.Context, tag string, page, pageSize int) {
	posts, total, err := p.tags.FindApprovedPostsByTag(tag, (page-1)*pageSize, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list posts by tag")
		return
	}
	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// GetPost returns a single post with its approved comments and reaction
// counts. Unapproved posts are visible only to their author and to parents.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid post id")
		return
	}

	// The approved-post view is identical for every caller, so it can be
	// served from cache. Owner/parent views of unapproved posts never are.
	cacheKey := postDetailKey(postID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var post models.Post
	if err := p.db.Preload("User").Preload("Tags").First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	if !post.IsPublic() {
		userID, _ := getUserID(ctx)
		if post.UserID != userID && !isParent(ctx) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
	}

	var comments []models.Comment
	if err := p.db.Preload("User").
		Where("post_id = ? AND status = ?", post.ID, models.StatusApproved).
		Order("created_at").Find(&comments).Error; err != nil {
		utils.Sugar.Warnf("failed to load comments for post %d: %v", post.ID, err)
	}
	post.Comments = comments

	counts, err := p.reactions.Counts(post.ID)
	if err != nil {
		utils.Sugar.Warnf("failed to load reactions for post %d: %v", post.ID, err)
		counts = map[string]int64{}
	}

	payload := gin.H{"post": post, "reactions": counts}
	if post.IsPublic() {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	}
	utils.Success(ctx, payload)
}

// ListMyPosts returns posts created by the authenticated user, any status.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	var posts []models.Post
	var total int64
	q := p.db.Where("user_id = ?", userID).Preload("Tags").Order("created_at DESC")
	if err := q.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to count user posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to list user posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// UpdatePost allows the author to update their post. Content is re-rendered
// and an approved post goes back to review so edits are never published unseen.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required,min=1"`
		Content     string   `json:"content"`
		ContentHTML string   `json:"content_html"`
		ImageURL    string   `json:"image_url"`
		Tags        []string `json:"tags"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
		return
	}
	if req.Content == "" && req.ContentHTML == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "content cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own posts")
		return
	}

	html, text := utils.RenderContent(req.ContentHTML, req.Content)
	post.Title = title
	post.Content = req.Content
	post.ContentHTML = html
	post.Excerpt = utils.Excerpt(text, utils.ExcerptLimit)
	post.ImageURL = strings.TrimSpace(req.ImageURL)
	if post.Status == models.StatusApproved {
		post.Status = models.StatusPending
	}
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to update post")
		return
	}

	if req.Tags != nil {
		if err := p.tags.SetPostTags(&post, req.Tags); err != nil {
			utils.Sugar.Warnf("replacing tags on post %d failed: %v", post.ID, err)
		}
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.CacheDelete(postDetailKey(post.ID))
	utils.Success(ctx, gin.H{"post": post})
}

// SubmitPost sends a draft to the review queue.
func (p *PostController) SubmitPost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}

	post, err := p.moderation.SubmitPost(postID, userID)
	if err != nil {
		respondModerationError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost allows the author or a parent to delete a post. Related comments
// and reactions are removed best-effort.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	if post.UserID != userID && !isParent(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own posts")
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to delete post")
		return
	}

	// Best-effort cascade; orphans are harmless and cleaned up opportunistically.
	if err := p.db.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
		utils.Sugar.Warnf("deleting comments of post %d failed: %v", post.ID, err)
	}
	for _, kind := range services.KnownReactionKinds {
		if err := p.db.Delete(&models.Reaction{}, "id = ?", services.ReactionID(post.ID, kind)).Error; err != nil {
			utils.Sugar.Warnf("deleting %s reactions of post %d failed: %v", kind, post.ID, err)
		}
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.CacheDelete(postDetailKey(post.ID))
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// CreateComment adds a comment to an approved post; it enters the review
// queue as pending and is invisible until a parent approves it.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	content := utils.SanitizeHTML(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
		Status:  models.StatusPending,
	}

	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to create comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment, "message": "comment waiting for review"})
}

// DeleteComment allows the comment owner or a parent to delete a comment.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	cid := strings.TrimSpace(ctx.Param("commentId"))
	if cid == "" {
		utils.Error(ctx, http.StatusBadRequest, 40070, "missing comment id")
		return
	}
	var cmt models.Comment
	if err := p.db.First(&cmt, cid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load comment")
		return
	}

	uid, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	if cmt.UserID != uid && !isParent(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only delete your own comment")
		return
	}
	if err := p.db.Delete(&cmt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// UploadImage stores a story image or avatar locally and returns its URL.
func (p *PostController) UploadImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40033, "only image files are allowed")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to create upload directory")
		return
	}

	safeName := fmt.Sprintf("%d_%d%s", now.UnixNano(), userID, ext)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		if written > maxSize {
			utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to write file")
		}
		return
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s/%s/%s", now.Format("2006"), now.Format("01"), now.Format("02"), safeName)

	// Track for cleanup: files never attached to a post or avatar expire.
	ttl := time.Duration(config.Get().UploadTTLMinutes) * time.Minute
	absPath, _ := filepath.Abs(dstPath)
	if err := p.db.Create(&models.UploadedFile{FilePath: absPath, URL: relURL, ExpireAt: now.Add(ttl)}).Error; err != nil {
		utils.Sugar.Warnf("recording upload %s failed: %v", relURL, err)
	}

	utils.Success(ctx, gin.H{"url": relURL})
}

func postDetailKey(postID uint) string {
	return fmt.Sprintf("cache:post:detail:%d", postID)
}

func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	return uint(id), err
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isParent(ctx *gin.Context) bool {
	role, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return false
	}
	return role == models.RoleParent
}
