package main

import (
	"gorm.io/gorm"

	"github.com/apex-platform/tf-forge/internal/models"
)

// registerModels returns all models that need migration. The per-cloud
// request views and their sg_ingress counterparts are owned by the upstream
// intake schema and are not created here.
func registerModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.TerraformTemplate{},
		&models.GenerationStatus{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addStatusHistoryIndex,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// addStatusHistoryIndex backs the most-recent-first history query.
func addStatusHistoryIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_generation_statuses_user_started
		ON generation_statuses(username, started_at DESC)
	`).Error
}
