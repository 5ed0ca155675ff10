package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/utils"
)

const tokenDuration = 7 * 24 * time.Hour

// AuthController handles registration, login and profile management.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a family member account. Usernames listed in
// ParentUsernames get the parent role; everyone else is a child author.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required,min=3,max=32"`
		Password    string `json:"password" binding:"required,min=8"`
		Email       string `json:"email" binding:"omitempty,email"`
		DisplayName string `json:"display_name" binding:"max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	var count int64
	if err := a.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to check username")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to hash password")
		return
	}

	role := models.RoleChild
	for _, p := range config.Get().ParentUsernames {
		if strings.EqualFold(strings.TrimSpace(p), username) {
			role = models.RoleParent
			break
		}
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
		DisplayName:  displayName,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Login authenticates by username and password.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", strings.ToLower(strings.TrimSpace(req.Username))).First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own record.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile updates display name and avatar choice.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		DisplayName *string `json:"display_name" binding:"omitempty,max=64"`
		AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=512"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to update profile")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// GetUserPublic returns a user's public profile with their badge case.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	id := ctx.Param("id")
	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to load user")
		return
	}

	var badges []models.UserBadge
	if err := a.db.Preload("Badge").Where("user_id = ?", user.ID).Order("awarded_at").Find(&badges).Error; err != nil {
		badges = nil
	}

	utils.Success(ctx, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar_url":   user.AvatarURL,
			"role":         user.Role,
			"xp":           user.XP,
		},
		"badges": badges,
	})
}

// ListUsers returns every family account. Parent only.
func (a *AuthController) ListUsers(ctx *gin.Context) {
	var users []models.User
	if err := a.db.Order("id").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to list users")
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}
