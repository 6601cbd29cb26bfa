package handlers

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/mroshb/science_quiz_bot/internal/config"
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/internal/quiz"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
)

type fakeBot struct {
	mu          sync.Mutex
	messages    map[int64][]string
	channel     []string
	callbacks   []string
	groupAdmins map[int64]bool
	channelErr  error
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		messages:    make(map[int64][]string),
		groupAdmins: make(map[int64]bool),
	}
}

func (b *fakeBot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[chatID] = append(b.messages[chatID], text)
	return len(b.messages[chatID])
}

func (b *fakeBot) SendToChannel(channel, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channelErr != nil {
		return b.channelErr
	}
	b.channel = append(b.channel, text)
	return nil
}

func (b *fakeBot) AnswerCallback(callbackID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks = append(b.callbacks, text)
}

func (b *fakeBot) IsGroupAdmin(chatID, userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.groupAdmins[userID]
}

func (b *fakeBot) sentTo(chatID int64) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages[chatID]...)
}

func (b *fakeBot) lastSentTo(chatID int64) string {
	msgs := b.sentTo(chatID)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (b *fakeBot) sentContains(chatID int64, substr string) bool {
	for _, msg := range b.sentTo(chatID) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

type fakeSessions struct {
	startErr error
	stopErr  error
	timerErr error
	routeErr error

	started    []string
	stops      int
	timerValue int
}

func (s *fakeSessions) TryStart(groupID int64, category string) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, category)
	return nil
}

func (s *fakeSessions) Stop(groupID int64) error {
	if s.stopErr != nil {
		return s.stopErr
	}
	s.stops++
	return nil
}

func (s *fakeSessions) SetTimer(groupID int64, seconds int) error {
	if s.timerErr != nil {
		return s.timerErr
	}
	s.timerValue = seconds
	return nil
}

func (s *fakeSessions) SubmitAnswer(groupID int64, answer quiz.Answer) error {
	return s.routeErr
}

func (s *fakeSessions) RequestHint(groupID int64, hint quiz.HintRequest) error {
	return s.routeErr
}

type fakeQuestionAdmin struct {
	upserted  []*models.Question
	deleteErr error
	questions []models.Question
}

func (q *fakeQuestionAdmin) Upsert(question *models.Question) error {
	q.upserted = append(q.upserted, question)
	return nil
}

func (q *fakeQuestionAdmin) DeleteByText(questionText string) error {
	return q.deleteErr
}

func (q *fakeQuestionAdmin) All() ([]models.Question, error) {
	return q.questions, nil
}

type fakeAdminStore struct {
	admins   map[int64]string
	upserted []int64
	listErr  error
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: make(map[int64]string)}
}

func (a *fakeAdminStore) Upsert(telegramID int64, username string) error {
	a.admins[telegramID] = username
	a.upserted = append(a.upserted, telegramID)
	return nil
}

func (a *fakeAdminStore) IsAdmin(telegramID int64) (bool, error) {
	_, ok := a.admins[telegramID]
	return ok, nil
}

func (a *fakeAdminStore) Remove(telegramID int64) error {
	if _, ok := a.admins[telegramID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "admin not found")
	}
	delete(a.admins, telegramID)
	return nil
}

func (a *fakeAdminStore) List() ([]models.Admin, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	ids := make([]int64, 0, len(a.admins))
	for id := range a.admins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	admins := make([]models.Admin, 0, len(ids))
	for _, id := range ids {
		admins = append(admins, models.Admin{TelegramID: id, Username: a.admins[id]})
	}
	return admins, nil
}

type fakeRewarder struct {
	grants map[int64]int64
}

func newFakeRewarder() *fakeRewarder {
	return &fakeRewarder{grants: make(map[int64]int64)}
}

func (r *fakeRewarder) RewardCoins(userID int64, username string, coins int64) error {
	r.grants[userID] += coins
	return nil
}

type fakeUserLookup struct {
	users map[int64]*models.User
	err   error
}

func newFakeUserLookup() *fakeUserLookup {
	return &fakeUserLookup{users: make(map[int64]*models.User)}
}

func (u *fakeUserLookup) GetByTelegramID(telegramID int64) (*models.User, error) {
	if u.err != nil {
		return nil, u.err
	}
	user, ok := u.users[telegramID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return user, nil
}

type fakeHistory struct {
	entries []models.QuizSession
	err     error
}

func (h *fakeHistory) History(groupID int64, limit int) ([]models.QuizSession, error) {
	if h.err != nil {
		return nil, h.err
	}
	if len(h.entries) > limit {
		return h.entries[:limit], nil
	}
	return h.entries, nil
}

const testOwnerID int64 = 999

func makeTestQuestion(t *testing.T, text string) *models.Question {
	t.Helper()
	q := &models.Question{
		Category:      "bio",
		QuestionText:  text,
		CorrectAnswer: "A",
		Hint:          "h",
	}
	if err := q.SetOptions([]string{"A", "B"}); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}
	return q
}

type handlerFixture struct {
	manager   *HandlerManager
	bot       *fakeBot
	sessions  *fakeSessions
	questions *fakeQuestionAdmin
	admins    *fakeAdminStore
	rewards   *fakeRewarder
	users     *fakeUserLookup
	history   *fakeHistory
}

func newHandlerFixture() *handlerFixture {
	cfg := &config.Config{
		OwnerTelegramID:        testOwnerID,
		QuestionChannel:        "@quizbackup",
		DefaultTimerSeconds:    30,
		CorrectAnswerPoints:    10,
		HintCostCoins:          1,
		GroupInviteRewardCoins: 1,
	}
	f := &handlerFixture{
		bot:       newFakeBot(),
		sessions:  &fakeSessions{},
		questions: &fakeQuestionAdmin{},
		admins:    newFakeAdminStore(),
		rewards:   newFakeRewarder(),
		users:     newFakeUserLookup(),
		history:   &fakeHistory{},
	}
	f.manager = NewHandlerManager(cfg, f.sessions, f.questions, f.admins, f.rewards, f.users, f.history)
	return f
}
