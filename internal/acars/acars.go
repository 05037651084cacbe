// Package acars stores the planned route and flown track of a report.
package acars

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// Position is one in-flight position update.
type Position struct {
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	Altitude    int        `json:"altitude"`
	GroundSpeed int        `json:"gs"`
	Heading     int        `json:"heading"`
	SimTime     *time.Time `json:"sim_time,omitempty"`
}

// ParseRoute splits a space-delimited route into navpoint identifiers.
func ParseRoute(route string) []string {
	return strings.Fields(route)
}

// ReplaceRoute deletes every ROUTE entry of the report and inserts points in
// order, in one transaction. POSITION entries are left alone.
func ReplaceRoute(db *gorm.DB, pirepID string, points []string) error {
	if pirepID == "" {
		return fmt.Errorf("acars: pirep ID is required")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pirep_id = ? AND type = ?", pirepID, models.AcarsRoute).
			Delete(&models.Acars{}).Error; err != nil {
			return fmt.Errorf("acars: clear route of %s: %w", pirepID, err)
		}
		if len(points) == 0 {
			return nil
		}

		rows := make([]models.Acars, len(points))
		for i, name := range points {
			rows[i] = models.Acars{
				PirepID: pirepID,
				Type:    models.AcarsRoute,
				Name:    name,
				Order:   i + 1,
			}
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return fmt.Errorf("acars: save route of %s: %w", pirepID, err)
		}
		return nil
	})
}

// RoutePoints returns the ROUTE entries of a report in order.
func RoutePoints(db *gorm.DB, pirepID string) ([]models.Acars, error) {
	var rows []models.Acars
	if err := db.Where("pirep_id = ? AND type = ?", pirepID, models.AcarsRoute).
		Order("seq ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("acars: route of %s: %w", pirepID, err)
	}
	return rows, nil
}

// Route returns the navpoint names of a report's stored route in order.
func Route(db *gorm.DB, pirepID string) ([]string, error) {
	rows, err := RoutePoints(db, pirepID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

// AddPositions appends POSITION entries to a report's track.
func AddPositions(db *gorm.DB, pirepID string, positions []Position) ([]models.Acars, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	rows := make([]models.Acars, len(positions))
	for i, p := range positions {
		rows[i] = models.Acars{
			PirepID:     pirepID,
			Type:        models.AcarsPosition,
			Lat:         p.Lat,
			Lon:         p.Lon,
			Altitude:    p.Altitude,
			GroundSpeed: p.GroundSpeed,
			Heading:     p.Heading,
			SimTime:     p.SimTime,
		}
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("acars: add positions to %s: %w", pirepID, err)
	}
	return rows, nil
}

// Positions returns a report's POSITION entries in arrival order.
func Positions(db *gorm.DB, pirepID string) ([]models.Acars, error) {
	var rows []models.Acars
	if err := db.Where("pirep_id = ? AND type = ?", pirepID, models.AcarsPosition).
		Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("acars: positions of %s: %w", pirepID, err)
	}
	return rows, nil
}

// DeleteAll removes every ACARS entry of a report and returns the count.
func DeleteAll(db *gorm.DB, pirepID string) (int64, error) {
	result := db.Where("pirep_id = ?", pirepID).Delete(&models.Acars{})
	if result.Error != nil {
		return 0, fmt.Errorf("acars: delete entries of %s: %w", pirepID, result.Error)
	}
	return result.RowsAffected, nil
}
