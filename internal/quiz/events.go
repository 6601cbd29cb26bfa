package quiz

import (
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
)

// Core control-flow errors surfaced to the command boundary
var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeAlreadyRunning, "quiz already running in this group")
	ErrNotRunning     = errors.New(errors.ErrCodeNotRunning, "no quiz running in this group")
	ErrEmptyCategory  = errors.New(errors.ErrCodeEmptyCategory, "no questions found for this category")
)

// Answer is an inbound answer submission attributed to a round
type Answer struct {
	RoundID  string
	UserID   int64
	Username string
	Choice   string
}

// HintRequest is an inbound request to reveal a round's hint
type HintRequest struct {
	RoundID  string
	UserID   int64
	Username string
}

// Emitter delivers session output to the chat platform. Implementations must
// be safe for use from many runner goroutines at once.
type Emitter interface {
	SessionStarted(groupID int64, category string, timerSeconds int) error
	QuestionPosted(groupID int64, roundID string, question models.Question, options []string) error
	RoundClosed(groupID int64, roundID string, correctAnswer string, scoreboard []models.User) error
	SessionEnded(groupID int64) error
	HintRevealed(groupID, userID int64, username, hint string) error
	HintDenied(groupID, userID int64, username string) error
}

// GroupStore is the slice of persistence a running session needs for its
// group record. The Running flag is the single source of truth for "should
// this session continue".
type GroupStore interface {
	GetOrCreate(groupID int64) (*models.Group, error)
	SetRunning(groupID int64, running bool) error
	IsRunning(groupID int64) (bool, error)
	SetTimer(groupID int64, seconds int) error
}

// SessionLog records the append-only per-round audit trail
type SessionLog interface {
	Append(groupID int64, questionText string) (uint, error)
	MarkAnswered(sessionID uint) error
}

// ScoreStore mutates user points and coins. All mutations must be atomic at
// the store level because rounds from many groups score concurrently.
type ScoreStore interface {
	AddPoints(telegramID int64, username string, points int64) error
	AddCoins(telegramID int64, username string, coins int64) error
	SpendCoins(telegramID int64, coins int64) (bool, error)
	Scoreboard() ([]models.User, error)
}

// QuestionStore is the read-side of the question collection
type QuestionStore interface {
	ByCategory(category string) ([]models.Question, error)
	All() ([]models.Question, error)
}
