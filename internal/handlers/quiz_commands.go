package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/internal/quiz"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"github.com/mroshb/science_quiz_bot/pkg/logger"
	"github.com/mroshb/science_quiz_bot/pkg/utils"
)

// StartQuiz handles /startquiz [category]. Any group member may start one.
func (h *HandlerManager) StartQuiz(groupID, userID int64, category string, bot BotInterface) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = models.CategoryRandom
	}

	err := h.Sessions.TryStart(groupID, category)
	switch {
	case err == nil:
		logger.Info("Quiz started", "group_id", groupID, "user_id", userID, "category", category)
	case errors.HasCode(err, errors.ErrCodeAlreadyRunning):
		bot.SendMessage(groupID, "❌ Quiz already running!", nil)
	case errors.HasCode(err, errors.ErrCodeEmptyCategory):
		bot.SendMessage(groupID, "❌ No questions found for this category.", nil)
	default:
		logger.Error("Failed to start quiz", "group_id", groupID, "error", err)
		bot.SendMessage(groupID, "❌ Could not start the quiz, try again later.", nil)
	}
}

// StopQuiz handles /stopquiz. Only group admins or bot admins may stop.
func (h *HandlerManager) StopQuiz(groupID, userID int64, bot BotInterface) {
	if !h.canModerate(groupID, userID, bot) {
		bot.SendMessage(groupID, "❌ Only admins can stop the quiz.", nil)
		return
	}

	err := h.Sessions.Stop(groupID)
	switch {
	case err == nil:
		bot.SendMessage(groupID, "🛑 Quiz stopped.", nil)
	case errors.HasCode(err, errors.ErrCodeNotRunning):
		bot.SendMessage(groupID, "❌ No quiz is running in this group.", nil)
	default:
		logger.Error("Failed to stop quiz", "group_id", groupID, "error", err)
		bot.SendMessage(groupID, "❌ Could not stop the quiz, try again later.", nil)
	}
}

// SetTimer handles /set <seconds>. Only group admins or bot admins.
// A running session picks the new timer up on its next round.
func (h *HandlerManager) SetTimer(groupID, userID int64, arg string, bot BotInterface) {
	if !h.canModerate(groupID, userID, bot) {
		bot.SendMessage(groupID, "❌ Only group admins can set the timer.", nil)
		return
	}

	arg = strings.TrimSpace(arg)
	if arg == "" {
		bot.SendMessage(groupID, "Usage: /set <seconds>", nil)
		return
	}
	seconds, err := strconv.Atoi(arg)
	if err != nil {
		bot.SendMessage(groupID, "❌ seconds must be an integer.", nil)
		return
	}

	if err := h.Sessions.SetTimer(groupID, seconds); err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidInput) {
			bot.SendMessage(groupID, "❌ Timer must be a positive number of seconds.", nil)
			return
		}
		logger.Error("Failed to set timer", "group_id", groupID, "error", err)
		bot.SendMessage(groupID, "❌ Could not update the timer, try again later.", nil)
		return
	}
	bot.SendMessage(groupID, fmt.Sprintf("✅ Timer set to %ds per question.", seconds), nil)
}

// SubmitAnswer routes an inline answer back to the group's round
func (h *HandlerManager) SubmitAnswer(groupID int64, answer quiz.Answer, callbackID string, bot BotInterface) {
	if err := h.Sessions.SubmitAnswer(groupID, answer); err != nil {
		bot.AnswerCallback(callbackID, "⏳ This round is already over.")
		return
	}
	bot.AnswerCallback(callbackID, "✅ Answer received!")
}

// RequestHint routes an inline hint request back to the group's round
func (h *HandlerManager) RequestHint(groupID int64, hint quiz.HintRequest, callbackID string, bot BotInterface) {
	if err := h.Sessions.RequestHint(groupID, hint); err != nil {
		bot.AnswerCallback(callbackID, "⏳ This round is already over.")
		return
	}
	bot.AnswerCallback(callbackID, "💡 Hint requested.")
}

// RewardGroupInvite grants coins to whoever added the bot to a group
func (h *HandlerManager) RewardGroupInvite(groupID, userID int64, username string, bot BotInterface) {
	coins := h.Config.GroupInviteRewardCoins
	if coins <= 0 {
		return
	}
	if err := h.Rewards.RewardCoins(userID, username, coins); err != nil {
		logger.Error("Failed to reward group invite", "user_id", userID, "error", err)
		return
	}
	bot.SendMessage(groupID, fmt.Sprintf("🎁 Thanks for adding me! You earned %d coin(s).", coins), nil)
}

// MyScore handles /score: the caller's current points and coins
func (h *HandlerManager) MyScore(chatID, userID int64, username string, bot BotInterface) {
	user, err := h.Users.GetByTelegramID(userID)
	switch {
	case err == nil:
		name := utils.DisplayName(user.Username, username)
		bot.SendMessage(chatID, fmt.Sprintf("📊 %s: %d pts | %d coins", name, user.Points, user.Coins), nil)
	case errors.HasCode(err, errors.ErrCodeNotFound):
		bot.SendMessage(chatID, "📊 No score yet. Answer a quiz question to get on the board!", nil)
	default:
		logger.Error("Failed to load score", "user_id", userID, "error", err)
		bot.SendMessage(chatID, "❌ Could not load your score, try again later.", nil)
	}
}

const historyLimit = 5

// QuizHistory handles /history: the group's most recent rounds
func (h *HandlerManager) QuizHistory(groupID int64, bot BotInterface) {
	rounds, err := h.HistoryLog.History(groupID, historyLimit)
	if err != nil {
		logger.Error("Failed to load quiz history", "group_id", groupID, "error", err)
		bot.SendMessage(groupID, "❌ Could not load quiz history, try again later.", nil)
		return
	}
	if len(rounds) == 0 {
		bot.SendMessage(groupID, "No quiz history in this group yet. Use /startquiz to play!", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Recent rounds:\n")
	for _, round := range rounds {
		mark := "❌"
		if round.Answered {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, round.QuestionText)
	}
	bot.SendMessage(groupID, sb.String(), nil)
}

// Welcome handles /start in private chats and groups
func (h *HandlerManager) Welcome(chatID int64, private bool, bot BotInterface) {
	if private {
		bot.SendMessage(chatID,
			"👋 Welcome to the Science Quiz Bot!\n\n"+
				"I can run quiz games in any group.\n\n"+
				"➤ Add me to a group\n"+
				"➤ Use /startquiz to begin\n\n"+
				"You can also manage questions using:\n"+
				"• /addquiz\n"+
				"• /deletequiz\n"+
				"• /syncquiz\n\n"+
				"Enjoy learning! 🚀", nil)
		return
	}
	bot.SendMessage(chatID, "👋 Bot is active in this group!\nUse /startquiz to begin the quiz.", nil)
}

func (h *HandlerManager) canModerate(groupID, userID int64, bot BotInterface) bool {
	if bot.IsGroupAdmin(groupID, userID) {
		return true
	}
	isAdmin, err := h.Admins.IsAdmin(userID)
	if err != nil {
		logger.Error("Failed to check bot admin", "user_id", userID, "error", err)
		return false
	}
	return isAdmin
}
