package models

import "time"

// Aircraft is a physical airframe. FlightTime is in minutes.
type Aircraft struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Registration string    `gorm:"size:16;uniqueIndex" json:"registration"`
	ICAO         string    `gorm:"size:8" json:"icao"`
	AirportID    string    `gorm:"size:8;index" json:"airport_id"`
	FlightTime   int       `gorm:"default:0" json:"flight_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
