package models

import "time"

// Admin is a bot-level helper role, distinct from a group's native
// administrators which Telegram itself reports.
type Admin struct {
	ID         uint      `gorm:"primaryKey"`
	TelegramID int64     `gorm:"uniqueIndex;not null"`
	Username   string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Admin) TableName() string {
	return "admins"
}
