package models

import "time"

// Notification is a persisted copy of a lifecycle event for one pilot.
type Notification struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PilotID   uint       `gorm:"not null;index" json:"pilot_id"`
	Kind      string     `gorm:"size:32;not null" json:"kind"`
	PirepID   string     `gorm:"size:32;index" json:"pirep_id"`
	Title     string     `gorm:"size:256" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
