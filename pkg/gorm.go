package pkg

import (
	"fmt"

	"github.com/vitalpath/scoring-service/internal/config"
	"github.com/vitalpath/scoring-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates the service's tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ClinicalCase{},
		&models.BankItem{},
		&models.Attempt{},
		&models.ActiveSet{},
	)
}
