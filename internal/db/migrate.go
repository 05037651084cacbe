package db

import (
	"fmt"

	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Airline{},
		&models.Rank{},
		&models.Pilot{},
		&models.Aircraft{},
		&models.Flight{},
		&models.Pirep{},
		&models.Acars{},
		&models.Bid{},
		&models.Setting{},
		&models.Notification{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every Hangar table. Used by `hangar db reset`.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	// Reverse order so dependents go first.
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop %T: %w", all[i], err)
		}
	}
	return nil
}

// SeedRanks upserts Rank rows from configuration.
func SeedRanks(db *gorm.DB, ranks []config.RankConfig) error {
	for _, rc := range ranks {
		rank := models.Rank{
			Name:       rc.Name,
			Hours:      rc.Hours,
			AutoAccept: rc.AutoAccept,
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"hours", "auto_accept"}),
		}).Create(&rank)
		if result.Error != nil {
			return fmt.Errorf("db: seed rank %q: %w", rc.Name, result.Error)
		}
	}
	return nil
}

// SeedSettings inserts configured settings that are not stored yet. Values
// already in the table were set at runtime and win over the file.
func SeedSettings(db *gorm.DB, settings config.Settings) error {
	for key, value := range settings.Values() {
		row := models.Setting{Key: key, Value: value}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("db: seed setting %q: %w", key, result.Error)
		}
	}
	return nil
}
