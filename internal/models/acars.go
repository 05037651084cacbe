package models

import "time"

// AcarsType distinguishes planned route points from flown positions.
type AcarsType string

const (
	AcarsRoute    AcarsType = "route"
	AcarsPosition AcarsType = "position"
)

// Acars is one route navpoint or position report attached to a Pirep.
type Acars struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	PirepID     string    `gorm:"size:32;not null;index:idx_acars_pirep_type"`
	Type        AcarsType `gorm:"size:16;not null;index:idx_acars_pirep_type"`
	Name        string    `gorm:"size:64"`
	Order       int       `gorm:"column:seq;default:0"`
	Lat         float64
	Lon         float64
	Altitude    int
	GroundSpeed int
	Heading     int
	SimTime     *time.Time
	CreatedAt   time.Time
}

// TableName keeps the table name singular, matching the ACARS feed naming.
func (Acars) TableName() string { return "acars" }
