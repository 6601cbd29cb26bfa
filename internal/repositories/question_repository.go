package repositories

import (
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Upsert inserts the question or replaces the record keyed by its exact text
func (r *QuestionRepository) Upsert(question *models.Question) error {
	if err := question.Validate(); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "question must have a category, at least two options and a matching answer")
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "question_text"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "options", "correct_answer", "hint", "updated_at",
		}),
	}).Create(question)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to upsert question")
	}
	return nil
}

// DeleteByText removes the question with the exact given text
func (r *QuestionRepository) DeleteByText(questionText string) error {
	result := r.db.Where("question_text = ?", questionText).Delete(&models.Question{})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to delete question")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "question not found")
	}
	return nil
}

// ByCategory returns all questions in a category, matched case-insensitively
func (r *QuestionRepository) ByCategory(category string) ([]models.Question, error) {
	var questions []models.Question
	result := r.db.Where("LOWER(category) = LOWER(?)", category).Find(&questions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load questions")
	}
	return questions, nil
}

// All returns every stored question
func (r *QuestionRepository) All() ([]models.Question, error) {
	var questions []models.Question
	result := r.db.Find(&questions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load questions")
	}
	return questions, nil
}

// Count returns the total number of stored questions
func (r *QuestionRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&models.Question{}).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to count questions")
	}
	return count, nil
}
