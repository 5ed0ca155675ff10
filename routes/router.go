package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/controllers"
	"github.com/storynest/storynest/middleware"
	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	r.GET("/health", controllers.Health)

	// Services: badge catalog gets a short-lived in-process cache so approval
	// bursts don't hammer the badges table.
	badgeCatalog := utils.NewTTLCache(5 * time.Minute)
	evaluator := services.NewBadgeEvaluator(db, badgeCatalog)
	tagService := services.NewTagService(db)
	moderationService := services.NewModerationService(db, evaluator)
	reactionService := services.NewReactionService(db)
	assistant := services.NewAssistant()

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, tagService, moderationService, reactionService)
	moderationController := controllers.NewModerationController(db, moderationService)
	reactionController := controllers.NewReactionController(reactionService)
	badgeController := controllers.NewBadgeController(db, evaluator)
	assistantController := controllers.NewAssistantController(assistant)
	signController := controllers.NewSignInController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public surface: approved content, profiles, badges, stats, assistant.
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/reactions", reactionController.Counts)
	api.POST("/posts/:id/reactions", reactionController.Toggle)
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/badges", badgeController.ListBadges)
	api.GET("/stats", statsController.SiteStats)
	api.GET("/stats/views", statsController.PageViewHistory)
	api.GET("/config/site", controllers.SiteConfig)
	api.GET("/assistant/tip", assistantController.DailyTip)
	api.GET("/assistant/funfact", assistantController.FunFact)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/upload", postController.UploadImage)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/submit", postController.SubmitPost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.DELETE("/comments/:commentId", postController.DeleteComment)
	protected.GET("/users/me/posts", postController.ListMyPosts)
	protected.GET("/users/me/badges", badgeController.MyBadges)
	protected.GET("/users/me/badges/progress", badgeController.MyProgress)
	protected.POST("/users/me/badges/evaluate", badgeController.Evaluate)
	protected.POST("/signin/daily", signController.DailySignIn)
	protected.GET("/signin/status", signController.SignInStatus)

	// Parent-only review and administration surface.
	parent := api.Group("")
	parent.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware(), middleware.ParentRequired())
	parent.GET("/users", authController.ListUsers)
	parent.GET("/moderation/posts", moderationController.PendingPosts)
	parent.GET("/moderation/comments", moderationController.PendingComments)
	parent.POST("/moderation/posts/:id/approve", moderationController.ApprovePost)
	parent.POST("/moderation/posts/:id/reject", moderationController.RejectPost)
	parent.POST("/moderation/posts/:id/reopen", moderationController.ReopenPost)
	parent.POST("/moderation/comments/:id/approve", moderationController.ApproveComment)
	parent.POST("/moderation/comments/:id/reject", moderationController.RejectComment)
	parent.POST("/badges", badgeController.CreateBadge)
	parent.DELETE("/badges/:id", badgeController.DeleteBadge)
	parent.POST("/badges/award", badgeController.AwardBadge)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// Everything else falls back to the SPA entry.
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}
