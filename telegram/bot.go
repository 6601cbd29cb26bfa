package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/science_quiz_bot/internal/config"
	"github.com/mroshb/science_quiz_bot/internal/handlers"
	"github.com/mroshb/science_quiz_bot/internal/middleware"
	"github.com/mroshb/science_quiz_bot/internal/quiz"
	"github.com/mroshb/science_quiz_bot/internal/repositories"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
	"github.com/mroshb/science_quiz_bot/pkg/logger"
	"gorm.io/gorm"
)

const workerCount = 10

type Bot struct {
	api        *tgbotapi.BotAPI
	config     *config.Config
	db         *gorm.DB
	handlers   *handlers.HandlerManager
	supervisor *quiz.Supervisor
	limiter    *middleware.RateLimiter

	// Worker pool for parallel update processing
	workerChans []chan tgbotapi.Update
}

func InitBot(cfg *config.Config, db *gorm.DB) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	groupRepo := repositories.NewGroupRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	bot := &Bot{
		api:         api,
		config:      cfg,
		db:          db,
		limiter:     middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.GetRateLimitWindow()),
		workerChans: make([]chan tgbotapi.Update, workerCount),
	}

	// Wire the quiz core; the bot itself is the outbound emitter
	scorer := quiz.NewScorer(userRepo, cfg.CorrectAnswerPoints, cfg.HintCostCoins)
	bank := quiz.NewBank(questionRepo)
	bot.supervisor = quiz.NewSupervisor(groupRepo, sessionRepo, bank, scorer, bot, quiz.FirstCorrectWins)
	bot.handlers = handlers.NewHandlerManager(cfg, bot.supervisor, questionRepo, adminRepo, scorer, userRepo, sessionRepo)

	// Start workers
	for i := 0; i < workerCount; i++ {
		bot.workerChans[i] = make(chan tgbotapi.Update, 100)
		go bot.startWorker(bot.workerChans[i])
	}

	// Start update listener
	go bot.startUpdateListener()

	return bot, nil
}

// Stop shuts the bot down: no new updates, live quiz sessions asked to
// terminate, then wait for them to drain
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.supervisor.StopAll()
	b.supervisor.Wait()
}

func (b *Bot) startUpdateListener() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for {
		logger.Info("Starting update listener...")
		updates := b.api.GetUpdatesChan(u)

		for update := range updates {
			var userID int64
			if update.Message != nil && update.Message.From != nil {
				userID = update.Message.From.ID
			} else if update.CallbackQuery != nil {
				userID = update.CallbackQuery.From.ID
			}

			if userID != 0 {
				// Hashed dispatch to workers for per-user ordered processing
				workerIdx := userID % int64(len(b.workerChans))
				if workerIdx < 0 {
					workerIdx = -workerIdx
				}
				b.workerChans[workerIdx] <- update
			} else {
				go b.handleUpdate(update)
			}
		}

		logger.Warn("Update channel closed. Restarting in 5 seconds...")
		time.Sleep(5 * time.Second)
	}
}

func (b *Bot) startWorker(updates chan tgbotapi.Update) {
	for update := range updates {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in handleUpdate", "error", r)
		}
	}()

	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID

	// Bot invited to a new group: greet and reward the inviter
	if len(message.NewChatMembers) > 0 {
		for _, member := range message.NewChatMembers {
			if member.ID == b.api.Self.ID {
				b.handlers.RewardGroupInvite(chatID, userID, displayName(message.From), b)
				b.handlers.Welcome(chatID, false, b)
				return
			}
		}
		return
	}

	if !message.IsCommand() {
		return
	}

	if !b.limiter.Allow(userID) {
		logger.Debug("Rate limit exceeded", "user_id", userID)
		return
	}

	isGroup := message.Chat.IsGroup() || message.Chat.IsSuperGroup()
	isPrivate := message.Chat.IsPrivate()

	switch message.Command() {
	case "start":
		b.handlers.Welcome(chatID, isPrivate, b)
	case "startquiz":
		if isGroup {
			b.handlers.StartQuiz(chatID, userID, message.CommandArguments(), b)
		}
	case "stopquiz":
		if isGroup {
			b.handlers.StopQuiz(chatID, userID, b)
		}
	case "set":
		if isGroup {
			b.handlers.SetTimer(chatID, userID, message.CommandArguments(), b)
		}
	case "addquiz":
		if isPrivate {
			b.handlers.AddQuestion(userID, message.Text, b)
		}
	case "deletequiz":
		if isPrivate {
			b.handlers.DeleteQuestion(userID, message.CommandArguments(), b)
		}
	case "syncquiz":
		if isPrivate {
			b.handlers.SyncQuestions(userID, b)
		}
	case "addadmin":
		b.handlers.AddAdmin(chatID, userID, strings.Fields(message.CommandArguments()), b)
	case "deladmin":
		b.handlers.DelAdmin(chatID, userID, strings.Fields(message.CommandArguments()), b)
	case "admins":
		b.handlers.ListAdmins(chatID, userID, b)
	case "score":
		b.handlers.MyScore(chatID, userID, displayName(message.From), b)
	case "history":
		if isGroup {
			b.handlers.QuizHistory(chatID, b)
		}
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if b.HandleQuizCallbacks(query) {
		return
	}
	// Unknown callback, just dismiss the spinner
	b.AnswerCallback(query.ID, "")
}

// BotInterface implementation for the handlers package

func (b *Bot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "error", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) SendToChannel(channel, text string) error {
	if strings.HasPrefix(channel, "@") {
		if _, err := b.api.Send(tgbotapi.NewMessageToChannel(channel, text)); err != nil {
			return errors.Wrap(err, errors.ErrCodeTransportFailure, "failed to send to channel")
		}
		return nil
	}
	chatID, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "channel must be @name or a numeric chat ID")
	}
	return b.send(chatID, text, nil)
}

func (b *Bot) AnswerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logger.Warn("Failed to answer callback", "error", err)
	}
}

func (b *Bot) IsGroupAdmin(chatID, userID int64) bool {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		logger.Warn("Failed to look up chat member", "chat_id", chatID, "user_id", userID, "error", err)
		return false
	}
	return member.Status == "administrator" || member.Status == "creator"
}
