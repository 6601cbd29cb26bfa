package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// CategoryRandom is the case-insensitive sentinel selecting the full question set
const CategoryRandom = "random"

type Question struct {
	ID            uint      `gorm:"primaryKey"`
	Category      string    `gorm:"type:varchar(50);index;not null"`
	QuestionText  string    `gorm:"type:text;uniqueIndex;not null"`
	Options       string    `gorm:"type:jsonb;not null"` // JSON array of strings for PostgreSQL
	CorrectAnswer string    `gorm:"type:text;not null"`
	Hint          string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// OptionList decodes the stored options JSON into its ordered slice form
func (q *Question) OptionList() ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return nil, err
	}
	return options, nil
}

// SetOptions encodes the ordered option slice into the stored JSON form
func (q *Question) SetOptions(options []string) error {
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = string(data)
	return nil
}

// Validate checks structural rules: at least two options and the correct
// answer must be one of them
func (q *Question) Validate() error {
	options, err := q.OptionList()
	if err != nil {
		return gorm.ErrInvalidData
	}
	if q.QuestionText == "" || q.Category == "" || len(options) < 2 {
		return gorm.ErrInvalidData
	}
	for _, opt := range options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return gorm.ErrInvalidData
}

func (q *Question) BeforeSave(tx *gorm.DB) error {
	return q.Validate()
}

func (Question) TableName() string {
	return "questions"
}
