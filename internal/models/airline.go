package models

import "time"

// Airline operates flights and owns pilots and reports.
type Airline struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ICAO      string `gorm:"size:4;uniqueIndex"`
	Name      string `gorm:"size:128"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
}

// Flight is a scheduled flight pilots can bid on.
type Flight struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	AirlineID    uint      `gorm:"not null;index" json:"airline_id"`
	FlightNumber string    `gorm:"size:16" json:"flight_number"`
	DptAirportID string    `gorm:"size:8" json:"dpt_airport_id"`
	ArrAirportID string    `gorm:"size:8" json:"arr_airport_id"`
	FlightTime   int       `json:"flight_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// Bid is a pilot's reservation on a scheduled flight.
type Bid struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PilotID   uint      `gorm:"not null;uniqueIndex:idx_bid_pilot_flight" json:"pilot_id"`
	FlightID  string    `gorm:"size:32;not null;uniqueIndex:idx_bid_pilot_flight" json:"flight_id"`
	CreatedAt time.Time `json:"created_at"`

	Flight *Flight `gorm:"foreignKey:FlightID" json:"flight,omitempty"`
}
