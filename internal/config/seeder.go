package config

import (
	"log"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedAdminUser creates the default admin user if it doesn't exist
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("ℹ️ Admin user already exists, skipping seed")
		return nil
	}

	hashedPassword, err := password.Hash(getEnv("ADMIN_PASSWORD", "admin1234"))
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:       getEnv("ADMIN_EMAIL", "admin@lifelink.org.in"),
		Password:    hashedPassword,
		FullName:    "System Administrator",
		Role:        models.RoleAdmin,
		BloodType:   "O+",
		IsAvailable: false,
		IsActive:    true,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user seeded: %s", admin.Email)
	return nil
}
