package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/internal/security"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"github.com/mroshb/science_quiz_bot/pkg/logger"
	"github.com/mroshb/science_quiz_bot/pkg/utils"
)

const addQuizUsage = "Invalid format.\n\nSend 5 lines:\n" +
	"Category: X\nQuestion: Y\nOptions: A,B,C,D\nAnswer: A\nHint: Z"

// ParseQuestionPayload parses the 5-line /addquiz message body. Lines are
// positional: category, question, comma-separated options, answer, hint.
// All user-supplied text is sanitized before it reaches the store.
func ParseQuestionPayload(payload string) (*models.Question, error) {
	var lines []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "/addquiz") {
		lines = lines[1:]
	}
	if len(lines) < 5 {
		return nil, errors.New(errors.ErrCodeInvalidInput, addQuizUsage)
	}

	values := make([]string, 5)
	for i := 0; i < 5; i++ {
		_, value, found := strings.Cut(lines[i], ":")
		if !found {
			return nil, errors.New(errors.ErrCodeInvalidInput, addQuizUsage)
		}
		values[i] = security.CleanText(value)
	}

	options := utils.ParseOptions(values[2])
	for i := range options {
		options[i] = security.CleanText(options[i])
	}

	question := &models.Question{
		Category:      values[0],
		QuestionText:  values[1],
		CorrectAnswer: values[3],
		Hint:          values[4],
	}
	if err := question.SetOptions(options); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, addQuizUsage)
	}
	if err := question.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput,
			"a question needs at least two options and the answer must be one of them")
	}
	return question, nil
}

// FormatQuestion renders a question in the channel broadcast layout
func FormatQuestion(q *models.Question) string {
	options, err := q.OptionList()
	if err != nil {
		options = nil
	}
	return fmt.Sprintf("Category: %s\nQuestion: %s\nOptions: %s\nAnswer: %s\nHint: %s",
		q.Category, q.QuestionText, strings.Join(options, ","), q.CorrectAnswer, q.Hint)
}

// AddQuestion handles /addquiz in private chat (owner or bot admin)
func (h *HandlerManager) AddQuestion(userID int64, payload string, bot BotInterface) {
	if !h.isOwnerOrAdmin(userID) {
		bot.SendMessage(userID, "❌ Only owner/admin can add questions.", nil)
		return
	}

	question, err := ParseQuestionPayload(payload)
	if err != nil {
		bot.SendMessage(userID, addQuizUsage, nil)
		return
	}

	if err := h.Questions.Upsert(question); err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidInput) {
			bot.SendMessage(userID, "❌ The question needs at least two options and the answer must be one of them.", nil)
			return
		}
		logger.Error("Failed to upsert question", "user_id", userID, "error", err)
		bot.SendMessage(userID, "❌ Could not save the question, try again later.", nil)
		return
	}

	bot.SendMessage(userID, "✅ Question added.", nil)

	if h.Config.QuestionChannel != "" {
		if err := bot.SendToChannel(h.Config.QuestionChannel, FormatQuestion(question)); err != nil {
			logger.Warn("Failed to copy question to channel", "error", err)
		}
	}
}

// DeleteQuestion handles /deletequiz <question text> (owner or bot admin)
func (h *HandlerManager) DeleteQuestion(userID int64, questionText string, bot BotInterface) {
	if !h.isOwnerOrAdmin(userID) {
		bot.SendMessage(userID, "❌ Only owner/admin can delete questions.", nil)
		return
	}

	questionText = strings.TrimSpace(questionText)
	if questionText == "" {
		bot.SendMessage(userID, "Usage: /deletequiz <question text>", nil)
		return
	}

	err := h.Questions.DeleteByText(questionText)
	switch {
	case err == nil:
		bot.SendMessage(userID, "✅ Question deleted.", nil)
	case errors.HasCode(err, errors.ErrCodeNotFound):
		bot.SendMessage(userID, "❌ Question not found.", nil)
	default:
		logger.Error("Failed to delete question", "user_id", userID, "error", err)
		bot.SendMessage(userID, "❌ Could not delete the question, try again later.", nil)
	}
}

// SyncQuestions handles /syncquiz: broadcast every question to the backup
// channel (owner or bot admin)
func (h *HandlerManager) SyncQuestions(userID int64, bot BotInterface) {
	if !h.isOwnerOrAdmin(userID) {
		bot.SendMessage(userID, "❌ Only owner/admin can sync questions.", nil)
		return
	}
	if h.Config.QuestionChannel == "" {
		bot.SendMessage(userID, "❌ QUESTION_CHANNEL not set!", nil)
		return
	}

	questions, err := h.Questions.All()
	if err != nil {
		logger.Error("Failed to load questions for sync", "error", err)
		bot.SendMessage(userID, "❌ Could not load questions, try again later.", nil)
		return
	}
	if len(questions) == 0 {
		bot.SendMessage(userID, "❌ No questions found.", nil)
		return
	}

	sent := 0
	for i := range questions {
		if err := bot.SendToChannel(h.Config.QuestionChannel, FormatQuestion(&questions[i])); err != nil {
			logger.Warn("Failed to sync question", "question", questions[i].QuestionText, "error", err)
			continue
		}
		sent++
	}
	bot.SendMessage(userID, fmt.Sprintf("✅ Synced %d questions.", sent), nil)
}

// AddAdmin handles /addadmin <telegram id> [username] (owner only). The Bot
// API cannot resolve arbitrary usernames to IDs, so a numeric ID is required.
func (h *HandlerManager) AddAdmin(chatID, userID int64, args []string, bot BotInterface) {
	if userID != h.Config.OwnerTelegramID {
		bot.SendMessage(chatID, "❌ Only the owner can add admins.", nil)
		return
	}
	if len(args) == 0 {
		bot.SendMessage(chatID, "Usage: /addadmin <telegram id> [username]", nil)
		return
	}

	adminID, err := strconv.ParseInt(utils.NormalizeUsername(args[0]), 10, 64)
	if err != nil {
		bot.SendMessage(chatID, "❌ I need the user's numeric Telegram ID.\nUsage: /addadmin <telegram id> [username]", nil)
		return
	}

	username := ""
	if len(args) > 1 {
		username = utils.NormalizeUsername(args[1])
	}

	if err := h.Admins.Upsert(adminID, username); err != nil {
		logger.Error("Failed to add admin", "admin_id", adminID, "error", err)
		bot.SendMessage(chatID, "❌ Could not add the admin, try again later.", nil)
		return
	}
	bot.SendMessage(chatID, fmt.Sprintf("✅ %s added as admin.", utils.DisplayName(username, args[0])), nil)
}

// DelAdmin handles /deladmin <telegram id> (owner only)
func (h *HandlerManager) DelAdmin(chatID, userID int64, args []string, bot BotInterface) {
	if userID != h.Config.OwnerTelegramID {
		bot.SendMessage(chatID, "❌ Only the owner can remove admins.", nil)
		return
	}
	if len(args) == 0 {
		bot.SendMessage(chatID, "Usage: /deladmin <telegram id>", nil)
		return
	}

	adminID, err := strconv.ParseInt(utils.NormalizeUsername(args[0]), 10, 64)
	if err != nil {
		bot.SendMessage(chatID, "❌ I need the user's numeric Telegram ID.\nUsage: /deladmin <telegram id>", nil)
		return
	}

	err = h.Admins.Remove(adminID)
	switch {
	case err == nil:
		bot.SendMessage(chatID, "✅ Admin removed.", nil)
	case errors.HasCode(err, errors.ErrCodeNotFound):
		bot.SendMessage(chatID, "❌ Admin not found.", nil)
	default:
		logger.Error("Failed to remove admin", "admin_id", adminID, "error", err)
		bot.SendMessage(chatID, "❌ Could not remove the admin, try again later.", nil)
	}
}

// ListAdmins handles /admins (owner only)
func (h *HandlerManager) ListAdmins(chatID, userID int64, bot BotInterface) {
	if userID != h.Config.OwnerTelegramID {
		bot.SendMessage(chatID, "❌ Only the owner can list admins.", nil)
		return
	}

	admins, err := h.Admins.List()
	if err != nil {
		logger.Error("Failed to list admins", "error", err)
		bot.SendMessage(chatID, "❌ Could not load the admin list, try again later.", nil)
		return
	}
	if len(admins) == 0 {
		bot.SendMessage(chatID, "No bot admins yet. Add one with /addadmin.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("👮 Bot admins:\n")
	for _, admin := range admins {
		name := utils.DisplayName(admin.Username, strconv.FormatInt(admin.TelegramID, 10))
		fmt.Fprintf(&sb, "• %s (%d)\n", name, admin.TelegramID)
	}
	bot.SendMessage(chatID, sb.String(), nil)
}

func (h *HandlerManager) isOwnerOrAdmin(userID int64) bool {
	if userID == h.Config.OwnerTelegramID {
		return true
	}
	isAdmin, err := h.Admins.IsAdmin(userID)
	if err != nil {
		logger.Error("Failed to check bot admin", "user_id", userID, "error", err)
		return false
	}
	return isAdmin
}
