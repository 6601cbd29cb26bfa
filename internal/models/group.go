package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultTimerSeconds is the per-round timer used for groups that never ran /set
const DefaultTimerSeconds = 30

type Group struct {
	ID           uint      `gorm:"primaryKey"`
	GroupID      int64     `gorm:"uniqueIndex;not null"`
	Running      bool      `gorm:"default:false;not null"`
	TimerSeconds int       `gorm:"default:30;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// BeforeSave resolves the timer default at the store boundary so callers
// never see a zero timer
func (g *Group) BeforeSave(tx *gorm.DB) error {
	if g.TimerSeconds <= 0 {
		g.TimerSeconds = DefaultTimerSeconds
	}
	return nil
}

func (Group) TableName() string {
	return "groups"
}
