package repositories

import (
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Upsert adds a bot admin or refreshes the stored username
func (r *AdminRepository) Upsert(telegramID int64, username string) error {
	admin := models.Admin{TelegramID: telegramID, Username: username}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"username": username}),
	}).Create(&admin)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to add admin")
	}
	return nil
}

// IsAdmin reports bot-admin membership
func (r *AdminRepository) IsAdmin(telegramID int64) (bool, error) {
	var count int64
	result := r.db.Model(&models.Admin{}).Where("telegram_id = ?", telegramID).Count(&count)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check admin")
	}
	return count > 0, nil
}

// Remove deletes a bot admin
func (r *AdminRepository) Remove(telegramID int64) error {
	result := r.db.Where("telegram_id = ?", telegramID).Delete(&models.Admin{})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to remove admin")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "admin not found")
	}
	return nil
}

// List returns all bot admins
func (r *AdminRepository) List() ([]models.Admin, error) {
	var admins []models.Admin
	result := r.db.Find(&admins)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list admins")
	}
	return admins, nil
}
