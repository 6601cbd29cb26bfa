package repositories

import (
	"time"

	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Append records the start of a round and returns the audit row ID
func (r *SessionRepository) Append(groupID int64, questionText string) (uint, error) {
	session := models.QuizSession{
		GroupID:      groupID,
		QuestionText: questionText,
		Answered:     false,
		StartedAt:    time.Now().UTC(),
	}
	result := r.db.Create(&session)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to record session")
	}
	return session.ID, nil
}

// MarkAnswered flags the round's audit row once a correct answer arrived
func (r *SessionRepository) MarkAnswered(sessionID uint) error {
	result := r.db.Model(&models.QuizSession{}).Where("id = ?", sessionID).
		UpdateColumn("answered", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to mark session answered")
	}
	return nil
}

// History returns the most recent audit rows for a group
func (r *SessionRepository) History(groupID int64, limit int) ([]models.QuizSession, error) {
	var sessions []models.QuizSession
	result := r.db.Where("group_id = ?", groupID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load session history")
	}
	return sessions, nil
}
