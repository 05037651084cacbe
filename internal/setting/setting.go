// Package setting persists runtime-adjustable settings and overlays them on
// the configured defaults.
package setting

import (
	"fmt"

	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store validates value for key and upserts it.
func Store(db *gorm.DB, key, value string) error {
	var probe config.Settings
	if err := probe.Set(key, value); err != nil {
		return err
	}
	row := models.Setting{Key: key, Value: value}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("setting: store %s: %w", key, err)
	}
	return nil
}

// List returns every stored setting ordered by key.
func List(db *gorm.DB) ([]models.Setting, error) {
	var rows []models.Setting
	if err := db.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("setting: list: %w", err)
	}
	return rows, nil
}

// Load overlays stored values on base. A stored value that no longer parses
// is a configuration error; unknown keys are ignored.
func Load(db *gorm.DB, base config.Settings) (config.Settings, error) {
	rows, err := List(db)
	if err != nil {
		return base, err
	}
	known := make(map[string]bool)
	for _, k := range config.Keys() {
		known[k] = true
	}
	out := base
	for _, row := range rows {
		if !known[row.Key] {
			continue
		}
		if err := out.Set(row.Key, row.Value); err != nil {
			return base, fmt.Errorf("setting: load: %w", err)
		}
	}
	return out, nil
}
