package database

import (
	"resourcehub/config"
	"resourcehub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) *gorm.DB {
	dsn := "host=" + cfg.Database.DBHost + " user=" + cfg.Database.DBUser + " password=" + cfg.Database.DBPassword + " dbname=" + cfg.Database.DBName + " port=" + cfg.Database.DBPort + " sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	return db
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Resource{},
		&models.Rating{},
	)
}
