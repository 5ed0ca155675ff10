package main

import (
	"time"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/routes"
	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Tag{},
		&models.Reaction{}, &models.Badge{}, &models.UserBadge{},
		&models.SignIn{}, &models.PageView{}, &models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	// Background workers (best-effort)
	utils.StartUploadCleaner(5 * time.Minute)
	services.StartDailyDigest(db, 24*time.Hour)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
