package models

import "time"

// PirepState is the lifecycle state of a flight report.
type PirepState string

const (
	PirepPending       PirepState = "pending"
	PirepInProgress    PirepState = "in_progress"
	PirepPendingAccept PirepState = "pending_accept"
	PirepAccepted      PirepState = "accepted"
	PirepRejected      PirepState = "rejected"
	PirepCancelled     PirepState = "cancelled"
	PirepDeleted       PirepState = "deleted"
)

// PirepStates lists every valid report state.
var PirepStates = []PirepState{
	PirepPending,
	PirepInProgress,
	PirepPendingAccept,
	PirepAccepted,
	PirepRejected,
	PirepCancelled,
	PirepDeleted,
}

// Valid reports whether s is one of the declared states.
func (s PirepState) Valid() bool {
	for _, v := range PirepStates {
		if s == v {
			return true
		}
	}
	return false
}

// Active reports whether a report in state s still accepts flight data.
func (s PirepState) Active() bool {
	switch s {
	case PirepAccepted, PirepRejected, PirepCancelled, PirepDeleted:
		return false
	}
	return true
}

// Pirep is a pilot report for one flight. Distances are stored in nautical
// miles and fuel in pounds; conversion happens at presentation time.
type Pirep struct {
	ID              string     `gorm:"primaryKey;size:32"`
	PilotID         uint       `gorm:"not null;index"`
	AirlineID       uint       `gorm:"not null"`
	AircraftID      *uint      `gorm:"index"`
	FlightID        *string    `gorm:"size:32;index"`
	FlightNumber    string     `gorm:"size:16"`
	DptAirportID    string     `gorm:"size:8"`
	ArrAirportID    string     `gorm:"size:8"`
	FlightTime      int        `gorm:"default:0"`
	Distance        float64    `gorm:"default:0"`
	PlannedDistance float64    `gorm:"default:0"`
	FuelUsed        float64    `gorm:"default:0"`
	Route           string     `gorm:"type:text"`
	Notes           string     `gorm:"type:text"`
	State           PirepState `gorm:"size:16;default:pending;index"`
	SubmittedAt     *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time

	Pilot *Pilot  `gorm:"foreignKey:PilotID"`
	Acars []Acars `gorm:"foreignKey:PirepID"`
}
