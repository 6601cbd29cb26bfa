package repositories

import (
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// AddPoints atomically increments a user's points, creating the record on
// first contact. Multiple rounds can score concurrently, so this must be a
// single upsert statement rather than read-modify-write.
func (r *UserRepository) AddPoints(telegramID int64, username string, points int64) error {
	user := models.User{TelegramID: telegramID, Username: username, Points: points}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":   gorm.Expr("users.points + ?", points),
			"username": username,
		}),
	}).Create(&user)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to add points")
	}
	return nil
}

// AddCoins atomically increments a user's coin balance, creating the record
// on first contact
func (r *UserRepository) AddCoins(telegramID int64, username string, coins int64) error {
	user := models.User{TelegramID: telegramID, Username: username, Coins: coins}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"coins":    gorm.Expr("users.coins + ?", coins),
			"username": username,
		}),
	}).Create(&user)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to add coins")
	}
	return nil
}

// SpendCoins deducts the given amount only if the balance covers it. The
// conditional UPDATE makes concurrent spends safe: the balance can never go
// negative.
func (r *UserRepository) SpendCoins(telegramID int64, coins int64) (bool, error) {
	if coins <= 0 {
		return false, errors.New(errors.ErrCodeInvalidInput, "spend amount must be positive")
	}
	result := r.db.Model(&models.User{}).
		Where("telegram_id = ? AND coins >= ?", telegramID, coins).
		UpdateColumn("coins", gorm.Expr("coins - ?", coins))
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to spend coins")
	}
	return result.RowsAffected > 0, nil
}

// Scoreboard returns all users ranked by points descending, ties broken by
// username ascending for deterministic output
func (r *UserRepository) Scoreboard() ([]models.User, error) {
	var users []models.User
	result := r.db.Order("points DESC, username ASC").Find(&users)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load scoreboard")
	}
	return users, nil
}

// GetByTelegramID retrieves a user by Telegram ID
func (r *UserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	result := r.db.Where("telegram_id = ?", telegramID).First(&user)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}
	return &user, nil
}
