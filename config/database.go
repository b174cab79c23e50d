package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/andrewpaige1/eduengage-api/models"
)

// Connect opens the configured database and migrates the schema.
func Connect(cfg DatabaseConfig, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	mode := gormLogger.Warn
	if verbose {
		mode = gormLogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger.Default.LogMode(mode)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Pathway{},
		&models.PathwayNode{},
		&models.PathwayEdge{},
		&models.Synthesis{},
		&models.SynthesisNode{},
		&models.SynthesisEdge{},
	)
}
