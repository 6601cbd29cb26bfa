package quiz

import (
	"math/rand"
	"strings"

	"github.com/mroshb/science_quiz_bot/internal/models"
)

// Bank loads and orders question sets for new sessions
type Bank struct {
	store QuestionStore
}

func NewBank(store QuestionStore) *Bank {
	return &Bank{store: store}
}

// Fetch returns the questions for a category. The category is matched
// case-insensitively and the sentinel "random" selects the full set.
// Returns ErrEmptyCategory when nothing matches: a session must never start
// with zero questions.
func (b *Bank) Fetch(category string) ([]models.Question, error) {
	var (
		questions []models.Question
		err       error
	)
	if strings.EqualFold(category, models.CategoryRandom) {
		questions, err = b.store.All()
	} else {
		questions, err = b.store.ByCategory(category)
	}
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyCategory
	}
	return questions, nil
}

// Shuffle returns a session-local random permutation of the questions,
// leaving the input untouched. Not cryptographic, just distinct across
// repeated starts.
func (b *Bank) Shuffle(questions []models.Question) []models.Question {
	shuffled := make([]models.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
