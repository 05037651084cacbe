// Package pilot maintains pilot statistics derived from accepted reports.
package pilot

import (
	"errors"
	"fmt"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Get retrieves a pilot by ID, preloading the rank.
func Get(db *gorm.DB, id uint) (*models.Pilot, error) {
	var p models.Pilot
	if err := db.Preload("Rank").Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pilot: %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("pilot: get %d: %w", id, err)
	}
	return &p, nil
}

// lockForUpdate loads a pilot row with an exclusive lock inside tx.
func lockForUpdate(tx *gorm.DB, id uint) (*models.Pilot, error) {
	var p models.Pilot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pilot: %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("pilot: lock %d: %w", id, err)
	}
	return &p, nil
}

// Admins returns every pilot with the admin role.
func Admins(db *gorm.DB) ([]models.Pilot, error) {
	var admins []models.Pilot
	if err := db.Where("role = ?", models.RoleAdmin).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("pilot: list admins: %w", err)
	}
	return admins, nil
}

// ReturnFromLeave flips an ON_LEAVE pilot back to ACTIVE. It reports whether
// the state changed.
func ReturnFromLeave(tx *gorm.DB, id uint) (bool, error) {
	result := tx.Model(&models.Pilot{}).
		Where("id = ? AND state = ?", id, models.PilotOnLeave).
		Update("state", models.PilotActive)
	if result.Error != nil {
		return false, fmt.Errorf("pilot: return %d from leave: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetState sets a pilot's operational state.
func SetState(db *gorm.DB, id uint, state models.PilotState) error {
	result := db.Model(&models.Pilot{}).Where("id = ?", id).Update("state", state)
	if result.Error != nil {
		return fmt.Errorf("pilot: set state of %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("pilot: %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
