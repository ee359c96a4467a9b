package repositories

import (
	"fmt"

	"github.com/anonto42/yatube/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	return nil
}
