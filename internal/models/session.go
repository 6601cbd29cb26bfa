package models

import "time"

// QuizSession is the append-only per-round audit record. It is never read
// back for control flow; the Running flag on Group is authoritative.
type QuizSession struct {
	ID           uint      `gorm:"primaryKey"`
	GroupID      int64     `gorm:"index;not null"`
	QuestionText string    `gorm:"type:text;not null"`
	Answered     bool      `gorm:"default:false;not null"`
	StartedAt    time.Time `gorm:"not null"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}
