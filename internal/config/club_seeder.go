package config

import (
	"log"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedClubs creates the initial partner clubs if the table is empty
func SeedClubs(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Club{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("ℹ️ Clubs already seeded, skipping")
		return nil
	}

	var admin models.User
	if err := db.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return err
	}

	clubs := []models.Club{
		{
			Name:            "Rotaract Club of Pune Central",
			District:        "3131",
			City:            "Pune",
			State:           "Maharashtra",
			Description:     "Community service club running quarterly blood drives",
			MeetingDay:      "Saturday",
			MeetingTime:     "18:00",
			MeetingLocation: "Pune Central Community Hall",
			RegisteredByID:  admin.ID,
			IsActive:        true,
		},
		{
			Name:            "Rotaract Club of Mumbai West",
			District:        "3141",
			City:            "Mumbai",
			State:           "Maharashtra",
			Description:     "Partner club for city-wide donation campaigns",
			MeetingDay:      "Sunday",
			MeetingTime:     "10:00",
			MeetingLocation: "Andheri Sports Complex",
			RegisteredByID:  admin.ID,
			IsActive:        true,
		},
	}

	for i := range clubs {
		if err := db.Create(&clubs[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d clubs", len(clubs))
	return nil
}
