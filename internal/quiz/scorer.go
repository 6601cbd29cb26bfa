package quiz

import (
	"sort"

	"github.com/mroshb/science_quiz_bot/internal/models"
)

// Scorer translates quiz events into point and coin deltas. The deltas are
// applied through the store's atomic increments; the scorer itself holds no
// mutable state.
type Scorer struct {
	store           ScoreStore
	pointsPerAnswer int64
	hintCost        int64
}

func NewScorer(store ScoreStore, pointsPerAnswer, hintCost int64) *Scorer {
	if pointsPerAnswer <= 0 {
		pointsPerAnswer = 10
	}
	if hintCost <= 0 {
		hintCost = 1
	}
	return &Scorer{store: store, pointsPerAnswer: pointsPerAnswer, hintCost: hintCost}
}

// AwardAnswer credits a correct answer, creating the user lazily
func (s *Scorer) AwardAnswer(userID int64, username string) error {
	return s.store.AddPoints(userID, username, s.pointsPerAnswer)
}

// RewardCoins grants coins outside of answering, e.g. for inviting the bot
// to a new group
func (s *Scorer) RewardCoins(userID int64, username string, coins int64) error {
	if coins <= 0 {
		return nil
	}
	return s.store.AddCoins(userID, username, coins)
}

// SpendCoin deducts the configured hint cost if the user can afford it.
// Reports false when the balance is too low; the balance never goes negative.
func (s *Scorer) SpendCoin(userID int64) (bool, error) {
	return s.store.SpendCoins(userID, s.hintCost)
}

// Scoreboard returns the ranked snapshot of all users: points descending,
// ties broken by username ascending so repeated snapshots are deterministic
func (s *Scorer) Scoreboard() ([]models.User, error) {
	users, err := s.store.Scoreboard()
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].Username < users[j].Username
	})
	return users, nil
}
