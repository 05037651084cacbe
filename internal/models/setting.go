package models

import "time"

// Setting is a runtime-adjustable key/value configuration entry.
type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:256"`
	UpdatedAt time.Time
}
