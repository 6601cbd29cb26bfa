package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"github.com/mroshb/science_quiz_bot/pkg/utils"
)

// quiz.Emitter implementation: how session output is rendered for Telegram

func (b *Bot) SessionStarted(groupID int64, category string, timerSeconds int) error {
	return b.send(groupID, fmt.Sprintf("🎉 Quiz started!\nCategory: %s\nTimer: %ds", category, timerSeconds), nil)
}

func (b *Bot) QuestionPosted(groupID int64, roundID string, question models.Question, options []string) error {
	keyboard := BuildQuestionKeyboard(roundID, options)
	return b.send(groupID, fmt.Sprintf("📝 %s Question:\n%s", question.Category, question.QuestionText), keyboard)
}

func (b *Bot) RoundClosed(groupID int64, roundID, correctAnswer string, scoreboard []models.User) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏰ Time's up!\nCorrect answer: %s\n\n🏆 Scores:\n", correctAnswer)
	for _, user := range scoreboard {
		name := utils.DisplayName(user.Username, fmt.Sprintf("User %d", user.TelegramID))
		fmt.Fprintf(&sb, "%s - %d pts | %d coins\n", name, user.Points, user.Coins)
	}
	return b.send(groupID, sb.String(), nil)
}

func (b *Bot) SessionEnded(groupID int64) error {
	return b.send(groupID, "🏁 Quiz ended!", nil)
}

func (b *Bot) HintRevealed(groupID, userID int64, username, hint string) error {
	name := utils.DisplayName(username, fmt.Sprintf("User %d", userID))
	if hint == "" {
		hint = "no hint for this one, good luck!"
	}
	return b.send(groupID, fmt.Sprintf("💡 Hint for %s: %s", name, hint), nil)
}

func (b *Bot) HintDenied(groupID, userID int64, username string) error {
	name := utils.DisplayName(username, fmt.Sprintf("User %d", userID))
	return b.send(groupID, fmt.Sprintf("❌ %s, you have no coins for a hint!", name), nil)
}

func (b *Bot) send(chatID int64, text string, keyboard interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeTransportFailure, "failed to send message")
	}
	return nil
}
