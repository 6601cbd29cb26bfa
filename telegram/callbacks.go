package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/science_quiz_bot/internal/quiz"
)

// HandleQuizCallbacks routes inline keyboard presses on question messages.
// Data formats: "answer|<roundID>|<optionIndex>" and "hint|<roundID>".
func (b *Bot) HandleQuizCallbacks(query *tgbotapi.CallbackQuery) bool {
	if query.Message == nil {
		return false
	}

	groupID := query.Message.Chat.ID
	userID := query.From.ID
	username := displayName(query.From)

	if strings.HasPrefix(query.Data, "answer|") {
		parts := strings.Split(query.Data, "|")
		if len(parts) != 3 {
			return true
		}
		roundID := parts[1]
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			return true
		}
		choice := optionTextFromMarkup(query.Message.ReplyMarkup, index)
		if choice == "" {
			b.AnswerCallback(query.ID, "⏳ This round is already over.")
			return true
		}
		b.handlers.SubmitAnswer(groupID, quiz.Answer{
			RoundID:  roundID,
			UserID:   userID,
			Username: username,
			Choice:   choice,
		}, query.ID, b)
		return true
	}

	if strings.HasPrefix(query.Data, "hint|") {
		parts := strings.Split(query.Data, "|")
		if len(parts) != 2 {
			return true
		}
		b.handlers.RequestHint(groupID, quiz.HintRequest{
			RoundID:  parts[1],
			UserID:   userID,
			Username: username,
		}, query.ID, b)
		return true
	}

	return false
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}
