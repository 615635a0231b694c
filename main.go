package main

import (
	"resourcehub/cache"
	"resourcehub/config"
	"resourcehub/database"
	"resourcehub/handler"
	"resourcehub/pkg/logger"
	"resourcehub/repository"
	"resourcehub/router"
	"resourcehub/service"
	"resourcehub/storage"
)

func main() {
	log := logger.New()
	cfg := config.LoadConfig()

	db := database.InitDB(cfg)
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}

	files, err := storage.NewMinIOStorage(cfg)
	if err != nil {
		log.Fatalf("minio init failed: %v", err)
	}
	rankings := cache.NewRankingsCache(cfg)

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	userSvc := service.NewUserService(userRepo, cfg.JWT)
	resourceSvc := service.NewResourceService(resourceRepo, tagRepo, userRepo, files, rankings)
	ratingSvc := service.NewRatingService(ratingRepo, userRepo, rankings)
	dashboardSvc := service.NewDashboardService(resourceRepo, rankings)

	r := router.Setup(
		cfg,
		handler.NewAuthHandler(userSvc),
		handler.NewResourceHandler(resourceSvc),
		handler.NewRatingHandler(ratingSvc),
		handler.NewDashboardHandler(dashboardSvc),
	)

	log.Infof("resource hub listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("serve error: %v", err)
	}
}
