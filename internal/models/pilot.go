package models

import "time"

// PilotState is the operational state of a pilot account.
type PilotState string

const (
	PilotPending   PilotState = "pending"
	PilotActive    PilotState = "active"
	PilotOnLeave   PilotState = "on_leave"
	PilotSuspended PilotState = "suspended"
	PilotRejected  PilotState = "rejected"
)

// Pilot roles.
const (
	RolePilot = "pilot"
	RoleAdmin = "admin"
)

// Pilot holds a pilot's profile and denormalized flight statistics.
// Flights and FlightTime cover accepted reports only.
type Pilot struct {
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	Name          string     `gorm:"size:128;not null"`
	Email         string     `gorm:"size:256;uniqueIndex"`
	AirlineID     uint       `gorm:"index"`
	Role          string     `gorm:"size:16;default:pilot;index"`
	State         PilotState `gorm:"size:16;default:active;index"`
	Flights       int        `gorm:"default:0"`
	FlightTime    int        `gorm:"default:0"`
	TransferTime  int        `gorm:"default:0"`
	RankID        *uint
	HomeAirportID string  `gorm:"size:8"`
	CurrAirportID string  `gorm:"size:8"`
	LastPirepID   *string `gorm:"size:32"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Rank *Rank `gorm:"foreignKey:RankID"`
}
