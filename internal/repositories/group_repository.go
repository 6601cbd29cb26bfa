package repositories

import (
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// GetOrCreate returns the group record, creating it with defaults on first contact
func (r *GroupRepository) GetOrCreate(groupID int64) (*models.Group, error) {
	group := models.Group{GroupID: groupID, TimerSeconds: models.DefaultTimerSeconds}
	result := r.db.Where("group_id = ?", groupID).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "group_id"}}, DoNothing: true}).
		FirstOrCreate(&group)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load group")
	}
	return &group, nil
}

// SetRunning flips the advisory liveness flag. UpdateColumn keeps this a
// single atomic statement and skips model hooks.
func (r *GroupRepository) SetRunning(groupID int64, running bool) error {
	result := r.db.Model(&models.Group{}).Where("group_id = ?", groupID).
		UpdateColumn("running", running)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update running flag")
	}
	return nil
}

// ResetRunning clears every group's liveness flag. Sessions do not survive a
// restart, so any flag still set at bootstrap was left behind by an unclean
// exit and would lock its group out of new sessions.
func (r *GroupRepository) ResetRunning() error {
	result := r.db.Model(&models.Group{}).Where("running = ?", true).
		UpdateColumn("running", false)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to reset running flags")
	}
	return nil
}

// IsRunning reads the persisted liveness flag; missing groups are not running
func (r *GroupRepository) IsRunning(groupID int64) (bool, error) {
	var group models.Group
	result := r.db.Select("running").Where("group_id = ?", groupID).First(&group)
	if result.Error == gorm.ErrRecordNotFound {
		return false, nil
	}
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to read running flag")
	}
	return group.Running, nil
}

// SetTimer updates the per-round timer, creating the group record if needed
func (r *GroupRepository) SetTimer(groupID int64, seconds int) error {
	if seconds <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timer must be a positive number of seconds")
	}
	if _, err := r.GetOrCreate(groupID); err != nil {
		return err
	}
	result := r.db.Model(&models.Group{}).Where("group_id = ?", groupID).
		UpdateColumn("timer_seconds", seconds)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update timer")
	}
	return nil
}
