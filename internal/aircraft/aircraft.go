// Package aircraft keeps airframe flight time and location in line with
// accepted reports.
package aircraft

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Get retrieves an aircraft by ID.
func Get(db *gorm.DB, id uint) (*models.Aircraft, error) {
	var a models.Aircraft
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("aircraft: %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("aircraft: get %d: %w", id, err)
	}
	return &a, nil
}

// List returns every aircraft ordered by registration.
func List(db *gorm.DB) ([]models.Aircraft, error) {
	var fleet []models.Aircraft
	if err := db.Order("registration ASC").Find(&fleet).Error; err != nil {
		return nil, fmt.Errorf("aircraft: list: %w", err)
	}
	return fleet, nil
}

func lockForUpdate(tx *gorm.DB, id uint) (*models.Aircraft, error) {
	var a models.Aircraft
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("aircraft: %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("aircraft: lock %d: %w", id, err)
	}
	return &a, nil
}

// Apply adds (sign = +1) or removes (sign = -1) one report's flight time.
// An addition also moves the aircraft to the report's arrival airport unless
// a later-created accepted report already placed it.
func Apply(tx *gorm.DB, aircraftID uint, pirep *models.Pirep, sign int) (*models.Aircraft, error) {
	if sign != 1 && sign != -1 {
		return nil, fmt.Errorf("aircraft: sign must be +1 or -1, got %d", sign)
	}

	a, err := lockForUpdate(tx, aircraftID)
	if err != nil {
		return nil, err
	}

	a.FlightTime += sign * pirep.FlightTime
	if sign > 0 && pirep.ArrAirportID != "" {
		newer, err := hasNewerAccepted(tx, aircraftID, pirep)
		if err != nil {
			return nil, err
		}
		if !newer {
			a.AirportID = pirep.ArrAirportID
		}
	}

	if err := tx.Model(&models.Aircraft{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"flight_time": a.FlightTime,
		"airport_id":  a.AirportID,
	}).Error; err != nil {
		return nil, fmt.Errorf("aircraft: update %d: %w", a.ID, err)
	}
	return a, nil
}

func hasNewerAccepted(tx *gorm.DB, aircraftID uint, pirep *models.Pirep) (bool, error) {
	var n int64
	err := tx.Model(&models.Pirep{}).
		Where("aircraft_id = ? AND state = ? AND id <> ?", aircraftID, models.PirepAccepted, pirep.ID).
		Where("(created_at > ? OR (created_at = ? AND id > ?))", pirep.CreatedAt, pirep.CreatedAt, pirep.ID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("aircraft: newer reports of %d: %w", aircraftID, err)
	}
	return n > 0, nil
}

// Recalculate rebuilds an aircraft's flight time and location from the
// accepted reports flown on it.
func Recalculate(db *gorm.DB, aircraftID uint) (*models.Aircraft, error) {
	var result *models.Aircraft
	err := db.Transaction(func(tx *gorm.DB) error {
		a, err := lockForUpdate(tx, aircraftID)
		if err != nil {
			return err
		}

		var total int
		if err := tx.Model(&models.Pirep{}).
			Select("COALESCE(SUM(flight_time), 0)").
			Where("aircraft_id = ? AND state = ?", aircraftID, models.PirepAccepted).
			Scan(&total).Error; err != nil {
			return fmt.Errorf("aircraft: sum flight time of %d: %w", aircraftID, err)
		}
		a.FlightTime = total

		var last models.Pirep
		err = tx.Where("aircraft_id = ? AND state = ?", aircraftID, models.PirepAccepted).
			Order("created_at DESC, id DESC").First(&last).Error
		switch {
		case err == nil:
			if last.ArrAirportID != "" {
				a.AirportID = last.ArrAirportID
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("aircraft: latest report of %d: %w", aircraftID, err)
		}

		if err := tx.Model(&models.Aircraft{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"flight_time": a.FlightTime,
			"airport_id":  a.AirportID,
		}).Error; err != nil {
			return fmt.Errorf("aircraft: save %d: %w", a.ID, err)
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BatchResult summarises a fleet recalculation.
type BatchResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// RecalculateAll rebuilds every aircraft, one transaction per aircraft.
// Failures are logged and skipped.
func RecalculateAll(db *gorm.DB, log *slog.Logger) (BatchResult, error) {
	var ids []uint
	if err := db.Model(&models.Aircraft{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return BatchResult{}, fmt.Errorf("aircraft: list fleet: %w", err)
	}

	var res BatchResult
	for _, id := range ids {
		if _, err := Recalculate(db, id); err != nil {
			res.Failed++
			log.Error("aircraft recalculation failed", "aircraft", id, "err", err)
			continue
		}
		res.Updated++
	}
	log.Info("fleet recalculation finished", "updated", res.Updated, "failed", res.Failed)
	return res, nil
}
