// Package dbtest provides migrated SQLite databases and fixtures for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/zulandar/hangar/internal/db"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// Open returns a fresh, fully migrated SQLite database in a temp directory.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "hangar.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gormDB
}

// Create inserts v or fails the test.
func Create(t *testing.T, gormDB *gorm.DB, v interface{}) {
	t.Helper()
	if err := gormDB.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

// Airline inserts an airline with the given ICAO code.
func Airline(t *testing.T, gormDB *gorm.DB, icao string) *models.Airline {
	t.Helper()
	a := &models.Airline{ICAO: icao, Name: icao + " Virtual", Active: true}
	Create(t, gormDB, a)
	return a
}

// Pilot inserts an active pilot of the given airline.
func Pilot(t *testing.T, gormDB *gorm.DB, airlineID uint, name string) *models.Pilot {
	t.Helper()
	p := &models.Pilot{
		Name:          name,
		Email:         name + "@example.com",
		AirlineID:     airlineID,
		Role:          models.RolePilot,
		State:         models.PilotActive,
		HomeAirportID: "KJFK",
		CurrAirportID: "KJFK",
	}
	Create(t, gormDB, p)
	return p
}

// Aircraft inserts an aircraft parked at airport.
func Aircraft(t *testing.T, gormDB *gorm.DB, reg, airport string) *models.Aircraft {
	t.Helper()
	a := &models.Aircraft{Registration: reg, ICAO: "B738", AirportID: airport}
	Create(t, gormDB, a)
	return a
}

// Reload re-reads v by primary key.
func Reload(t *testing.T, gormDB *gorm.DB, v interface{}, id interface{}) {
	t.Helper()
	if err := gormDB.First(v, "id = ?", id).Error; err != nil {
		t.Fatalf("reload %T %v: %v", v, id, err)
	}
}
