// Package bid manages pilot reservations on scheduled flights.
package bid

import (
	"errors"
	"fmt"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/db"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// Add places a bid for pilotID on flightID. A second bid on the same flight
// is a validation error.
func Add(gormDB *gorm.DB, pilotID uint, flightID string) (*models.Bid, error) {
	if pilotID == 0 {
		return nil, fmt.Errorf("bid: pilot is required: %w", apperr.ErrValidation)
	}
	if flightID == "" {
		return nil, fmt.Errorf("bid: flight is required: %w", apperr.ErrValidation)
	}

	var flight models.Flight
	if err := gormDB.Where("id = ?", flightID).First(&flight).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bid: flight %s: %w", flightID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("bid: get flight %s: %w", flightID, err)
	}

	b := &models.Bid{PilotID: pilotID, FlightID: flightID}
	if err := gormDB.Create(b).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("bid: pilot %d already bid on %s: %w", pilotID, flightID, apperr.ErrValidation)
		}
		return nil, fmt.Errorf("bid: create: %w", err)
	}
	b.Flight = &flight
	return b, nil
}

// Remove deletes the pilot's bid on flightID.
func Remove(gormDB *gorm.DB, pilotID uint, flightID string) error {
	result := gormDB.Where("pilot_id = ? AND flight_id = ?", pilotID, flightID).Delete(&models.Bid{})
	if result.Error != nil {
		return fmt.Errorf("bid: remove: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("bid: pilot %d on %s: %w", pilotID, flightID, apperr.ErrNotFound)
	}
	return nil
}

// ListForPilot returns the pilot's bids, oldest first, with flights loaded.
func ListForPilot(gormDB *gorm.DB, pilotID uint) ([]models.Bid, error) {
	var bids []models.Bid
	if err := gormDB.Preload("Flight").Where("pilot_id = ?", pilotID).
		Order("created_at ASC, id ASC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("bid: list for pilot %d: %w", pilotID, err)
	}
	return bids, nil
}

// Reconcile clears the bid satisfied by an accepted report. It does nothing
// unless removeOnAccept is set and the report references a flight. It
// returns the number of bids removed.
func Reconcile(tx *gorm.DB, pirep *models.Pirep, removeOnAccept bool) (int64, error) {
	if !removeOnAccept || pirep.FlightID == nil || *pirep.FlightID == "" {
		return 0, nil
	}
	result := tx.Where("pilot_id = ? AND flight_id = ?", pirep.PilotID, *pirep.FlightID).Delete(&models.Bid{})
	if result.Error != nil {
		return 0, fmt.Errorf("bid: reconcile %s: %w", pirep.ID, result.Error)
	}
	return result.RowsAffected, nil
}
