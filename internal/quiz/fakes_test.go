package quiz

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/errors"
)

// In-memory store fakes mirroring the repository contracts

type fakeGroupStore struct {
	mu     sync.Mutex
	groups map[int64]*models.Group
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{groups: make(map[int64]*models.Group)}
}

func (s *fakeGroupStore) GetOrCreate(groupID int64) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[groupID]
	if !ok {
		group = &models.Group{GroupID: groupID, TimerSeconds: models.DefaultTimerSeconds}
		s.groups[groupID] = group
	}
	copied := *group
	return &copied, nil
}

func (s *fakeGroupStore) SetRunning(groupID int64, running bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[groupID]
	if !ok {
		group = &models.Group{GroupID: groupID, TimerSeconds: models.DefaultTimerSeconds}
		s.groups[groupID] = group
	}
	group.Running = running
	return nil
}

func (s *fakeGroupStore) IsRunning(groupID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group, ok := s.groups[groupID]; ok {
		return group.Running, nil
	}
	return false, nil
}

func (s *fakeGroupStore) SetTimer(groupID int64, seconds int) error {
	if seconds <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timer must be a positive number of seconds")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[groupID]
	if !ok {
		group = &models.Group{GroupID: groupID}
		s.groups[groupID] = group
	}
	group.TimerSeconds = seconds
	return nil
}

type auditEntry struct {
	groupID      int64
	questionText string
	answered     bool
}

type fakeSessionLog struct {
	mu      sync.Mutex
	entries map[uint]*auditEntry
	nextID  uint
}

func newFakeSessionLog() *fakeSessionLog {
	return &fakeSessionLog{entries: make(map[uint]*auditEntry)}
}

func (l *fakeSessionLog) Append(groupID int64, questionText string) (uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.entries[l.nextID] = &auditEntry{groupID: groupID, questionText: questionText}
	return l.nextID, nil
}

func (l *fakeSessionLog) MarkAnswered(sessionID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.entries[sessionID]; ok {
		entry.answered = true
	}
	return nil
}

func (l *fakeSessionLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *fakeSessionLog) isAnswered(sessionID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[sessionID]
	return ok && entry.answered
}

type fakeScoreStore struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{users: make(map[int64]*models.User)}
}

func (s *fakeScoreStore) upsert(telegramID int64, username string) *models.User {
	user, ok := s.users[telegramID]
	if !ok {
		user = &models.User{TelegramID: telegramID}
		s.users[telegramID] = user
	}
	if username != "" {
		user.Username = username
	}
	return user
}

func (s *fakeScoreStore) AddPoints(telegramID int64, username string, points int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(telegramID, username).Points += points
	return nil
}

func (s *fakeScoreStore) AddCoins(telegramID int64, username string, coins int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(telegramID, username).Coins += coins
	return nil
}

func (s *fakeScoreStore) SpendCoins(telegramID int64, coins int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[telegramID]
	if !ok || user.Coins < coins {
		return false, nil
	}
	user.Coins -= coins
	return true, nil
}

func (s *fakeScoreStore) Scoreboard() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	return users, nil
}

func (s *fakeScoreStore) points(telegramID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[telegramID]; ok {
		return user.Points
	}
	return 0
}

func (s *fakeScoreStore) coins(telegramID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[telegramID]; ok {
		return user.Coins
	}
	return 0
}

type fakeQuestionStore struct {
	questions []models.Question
}

func (s *fakeQuestionStore) ByCategory(category string) ([]models.Question, error) {
	var matched []models.Question
	for _, q := range s.questions {
		if strings.EqualFold(q.Category, category) {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

func (s *fakeQuestionStore) All() ([]models.Question, error) {
	return append([]models.Question(nil), s.questions...), nil
}

// recordingEmitter captures session output and lets tests synchronize with
// the round loop through channels

type postedEvent struct {
	groupID int64
	roundID string
	text    string
	options []string
}

type closedEvent struct {
	groupID       int64
	roundID       string
	correctAnswer string
	scoreboard    []models.User
}

type recordingEmitter struct {
	mu       sync.Mutex
	started  []int64
	posted   []postedEvent
	closed   []closedEvent
	ended    []int64
	revealed []string
	denied   []int64

	// questions whose posting should fail with a transport error
	failPosts map[string]bool

	postedCh chan postedEvent
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{
		failPosts: make(map[string]bool),
		postedCh:  make(chan postedEvent, 32),
	}
}

func (e *recordingEmitter) SessionStarted(groupID int64, category string, timerSeconds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, groupID)
	return nil
}

func (e *recordingEmitter) QuestionPosted(groupID int64, roundID string, question models.Question, options []string) error {
	e.mu.Lock()
	if e.failPosts[question.QuestionText] {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeTransportFailure, "send failed")
	}
	event := postedEvent{groupID: groupID, roundID: roundID, text: question.QuestionText, options: options}
	e.posted = append(e.posted, event)
	e.mu.Unlock()

	e.postedCh <- event
	return nil
}

func (e *recordingEmitter) RoundClosed(groupID int64, roundID, correctAnswer string, scoreboard []models.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = append(e.closed, closedEvent{groupID: groupID, roundID: roundID, correctAnswer: correctAnswer, scoreboard: scoreboard})
	return nil
}

func (e *recordingEmitter) SessionEnded(groupID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = append(e.ended, groupID)
	return nil
}

func (e *recordingEmitter) HintRevealed(groupID, userID int64, username, hint string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.revealed = append(e.revealed, hint)
	return nil
}

func (e *recordingEmitter) HintDenied(groupID, userID int64, username string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.denied = append(e.denied, userID)
	return nil
}

func (e *recordingEmitter) postedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.posted)
}

func (e *recordingEmitter) closedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.closed)
}

func (e *recordingEmitter) endedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.ended)
}

func (e *recordingEmitter) startedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.started)
}

func (e *recordingEmitter) revealedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.revealed)
}

func (e *recordingEmitter) deniedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.denied)
}

func (e *recordingEmitter) closedAt(i int) closedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed[i]
}

func (e *recordingEmitter) waitPosted(t *testing.T) postedEvent {
	t.Helper()
	select {
	case event := <-e.postedCh:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a question to be posted")
		return postedEvent{}
	}
}

// Test fixture helpers

func makeQuestion(t *testing.T, category, text string, options []string, answer, hint string) models.Question {
	t.Helper()
	q := models.Question{
		Category:      category,
		QuestionText:  text,
		CorrectAnswer: answer,
		Hint:          hint,
	}
	if err := q.SetOptions(options); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}
	return q
}

func scienceQuestions(t *testing.T, n int) []models.Question {
	t.Helper()
	base := []models.Question{
		makeQuestion(t, "bio", "DNA stands for?", []string{"Deoxyribonucleic Acid", "RNA", "Protein"}, "Deoxyribonucleic Acid", "It carries your genetic code."),
		makeQuestion(t, "bio", "Powerhouse of the cell?", []string{"Nucleus", "Mitochondria"}, "Mitochondria", "It produces ATP."),
		makeQuestion(t, "physics", "Unit of force?", []string{"Newton", "Joule", "Watt"}, "Newton", "Named after an Englishman."),
		makeQuestion(t, "physics", "Speed of light?", []string{"300,000 km/s", "150,000 km/s"}, "300,000 km/s", "3x10^8 m/s."),
		makeQuestion(t, "chemistry", "Symbol for gold?", []string{"Au", "Ag", "Gd"}, "Au", "Latin aurum."),
	}
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, base[i%len(base)])
	}
	return questions
}

type testEnv struct {
	groups  *fakeGroupStore
	log     *fakeSessionLog
	scores  *fakeScoreStore
	scorer  *Scorer
	emitter *recordingEmitter
}

func newTestEnv() *testEnv {
	scores := newFakeScoreStore()
	return &testEnv{
		groups:  newFakeGroupStore(),
		log:     newFakeSessionLog(),
		scores:  scores,
		scorer:  NewScorer(scores, 10, 1),
		emitter: newRecordingEmitter(),
	}
}

// newTestRunner builds a runner whose timer seconds are milliseconds
func (env *testEnv) newTestRunner(t *testing.T, groupID int64, questions []models.Question, policy AwardPolicy, timerSeconds int) *Runner {
	t.Helper()
	if err := env.groups.SetTimer(groupID, timerSeconds); err != nil {
		t.Fatalf("SetTimer() error = %v", err)
	}
	if err := env.groups.SetRunning(groupID, true); err != nil {
		t.Fatalf("SetRunning() error = %v", err)
	}
	runner := newRunner(groupID, "random", timerSeconds, questions,
		env.groups, env.log, env.scorer, env.emitter, policy)
	runner.unit = time.Millisecond
	return runner
}

func (env *testEnv) newTestSupervisor(questions []models.Question, policy AwardPolicy) *Supervisor {
	s := NewSupervisor(env.groups, env.log, NewBank(&fakeQuestionStore{questions: questions}), env.scorer, env.emitter, policy)
	s.roundUnit = time.Millisecond
	return s
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the session to terminate")
	}
}
