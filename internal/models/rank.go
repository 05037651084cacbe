package models

// Rank is a pilot tier unlocked at Hours of credited flight time.
type Rank struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"size:64;uniqueIndex"`
	Hours      int    `gorm:"default:0"`
	AutoAccept bool   `gorm:"default:false"`
}
