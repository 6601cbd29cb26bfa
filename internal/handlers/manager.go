package handlers

import (
	"github.com/mroshb/science_quiz_bot/internal/config"
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/internal/quiz"
)

// BotInterface is the outbound surface handlers need from the transport
type BotInterface interface {
	SendMessage(chatID int64, text string, keyboard interface{}) int
	SendToChannel(channel, text string) error
	AnswerCallback(callbackID, text string)
	IsGroupAdmin(chatID, userID int64) bool
}

// SessionControl is the slice of the supervisor the dispatcher drives
type SessionControl interface {
	TryStart(groupID int64, category string) error
	Stop(groupID int64) error
	SetTimer(groupID int64, seconds int) error
	SubmitAnswer(groupID int64, answer quiz.Answer) error
	RequestHint(groupID int64, hint quiz.HintRequest) error
}

// QuestionAdmin is the write/list side of the question collection
type QuestionAdmin interface {
	Upsert(question *models.Question) error
	DeleteByText(questionText string) error
	All() ([]models.Question, error)
}

// AdminStore manages bot-admin set membership
type AdminStore interface {
	Upsert(telegramID int64, username string) error
	IsAdmin(telegramID int64) (bool, error)
	Remove(telegramID int64) error
	List() ([]models.Admin, error)
}

// Rewarder grants coins outside the answer flow
type Rewarder interface {
	RewardCoins(userID int64, username string, coins int64) error
}

// UserLookup reads a single user's balances
type UserLookup interface {
	GetByTelegramID(telegramID int64) (*models.User, error)
}

// SessionHistory reads the per-group round audit trail
type SessionHistory interface {
	History(groupID int64, limit int) ([]models.QuizSession, error)
}

type HandlerManager struct {
	Config     *config.Config
	Sessions   SessionControl
	Questions  QuestionAdmin
	Admins     AdminStore
	Rewards    Rewarder
	Users      UserLookup
	HistoryLog SessionHistory
}

func NewHandlerManager(
	cfg *config.Config,
	sessions SessionControl,
	questions QuestionAdmin,
	admins AdminStore,
	rewards Rewarder,
	users UserLookup,
	history SessionHistory,
) *HandlerManager {
	return &HandlerManager{
		Config:     cfg,
		Sessions:   sessions,
		Questions:  questions,
		Admins:     admins,
		Rewards:    rewards,
		Users:      users,
		HistoryLog: history,
	}
}
