package database

import (
	"fmt"

	"marketplace-service/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureAdminUser is an idempotent boot step: it creates the
// administrative account only when no user with the admin role exists.
func EnsureAdminUser(db *gorm.DB, logger *zap.Logger, email, name string) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Name:  name,
		Email: email,
		Role:  models.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	logger.Info("Admin user seeded",
		zap.String("user_id", admin.ID.String()),
		zap.String("email", admin.Email),
	)
	return nil
}
