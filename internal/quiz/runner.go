package quiz

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/pkg/logger"
)

// AwardPolicy selects who scores within a round
type AwardPolicy int

const (
	// FirstCorrectWins awards only the first correct answer in a round
	FirstCorrectWins AwardPolicy = iota
	// EveryCorrectScores awards each user's first correct answer
	EveryCorrectScores
)

// Runner states
const (
	StateIdle int32 = iota
	StateRunning
	StateDraining
	StateTerminated
)

// Runner executes exactly one quiz session for one group, from the first
// question to termination. It owns only transient round state; the group's
// persisted Running flag stays the source of truth for whether to continue.
type Runner struct {
	groupID      int64
	category     string
	questions    []models.Question
	timerSeconds int // fallback when the store is unreachable mid-session

	groups  GroupStore
	log     SessionLog
	scorer  *Scorer
	emitter Emitter
	policy  AwardPolicy

	answers chan Answer
	hints   chan HintRequest

	// unit is the duration of one timer second; shrunk in tests so rounds
	// close in milliseconds
	unit time.Duration

	state    atomic.Int32
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func newRunner(groupID int64, category string, timerSeconds int, questions []models.Question,
	groups GroupStore, log SessionLog, scorer *Scorer, emitter Emitter, policy AwardPolicy) *Runner {
	return &Runner{
		groupID:      groupID,
		category:     category,
		questions:    questions,
		timerSeconds: timerSeconds,
		groups:       groups,
		log:          log,
		scorer:       scorer,
		emitter:      emitter,
		policy:       policy,
		unit:         time.Second,
		answers:      make(chan Answer, 64),
		hints:        make(chan HintRequest, 16),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// SubmitAnswer hands an inbound answer to the round loop. Never blocks the
// caller: if the runner is saturated or already gone the event is dropped,
// the round deadline will close it out regardless.
func (r *Runner) SubmitAnswer(a Answer) {
	select {
	case r.answers <- a:
	case <-r.done:
	default:
	}
}

// RequestHint hands an inbound hint request to the round loop
func (r *Runner) RequestHint(h HintRequest) {
	select {
	case r.hints <- h:
	case <-r.done:
	default:
	}
}

// Stop requests cooperative termination. The persisted flag is cleared
// immediately; the in-flight round still finishes and the loop exits at the
// next round boundary.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		if err := r.groups.SetRunning(r.groupID, false); err != nil {
			logger.Error("Failed to clear running flag on stop", "group_id", r.groupID, "error", err)
		}
		close(r.stopCh)
	})
}

// State reports the runner's lifecycle state
func (r *Runner) State() int32 {
	return r.state.Load()
}

// Done is closed once the session has fully terminated
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run drives the session to completion. Called on its own goroutine, one per
// group; rounds within it are strictly sequential.
func (r *Runner) Run() {
	defer close(r.done)
	defer r.state.Store(StateTerminated)

	r.state.Store(StateRunning)

	if err := r.emitter.SessionStarted(r.groupID, r.category, r.roundTimer()); err != nil {
		logger.Error("Failed to announce session start", "group_id", r.groupID, "error", err)
	}

	for _, question := range r.questions {
		if !r.shouldContinue() {
			r.state.Store(StateDraining)
			break
		}
		r.playRound(question)
	}

	if err := r.groups.SetRunning(r.groupID, false); err != nil {
		logger.Error("Failed to clear running flag", "group_id", r.groupID, "error", err)
	}
	if err := r.emitter.SessionEnded(r.groupID); err != nil {
		logger.Error("Failed to announce session end", "group_id", r.groupID, "error", err)
	}
}

// shouldContinue is the cooperative cancellation point between rounds: the
// stop channel catches an in-process Stop, the persisted flag catches an
// external one.
func (r *Runner) shouldContinue() bool {
	select {
	case <-r.stopCh:
		return false
	default:
	}
	running, err := r.groups.IsRunning(r.groupID)
	if err != nil {
		logger.Error("Failed to read running flag, draining session", "group_id", r.groupID, "error", err)
		return false
	}
	return running
}

// roundTimer re-reads the group's timer so /set takes effect on subsequent
// rounds without touching the in-flight one
func (r *Runner) roundTimer() int {
	group, err := r.groups.GetOrCreate(r.groupID)
	if err != nil {
		logger.Warn("Failed to read group timer, using session default", "group_id", r.groupID, "error", err)
		return r.timerSeconds
	}
	return group.TimerSeconds
}

func (r *Runner) playRound(question models.Question) {
	options, err := question.OptionList()
	if err != nil {
		logger.Error("Skipping question with malformed options", "group_id", r.groupID, "question", question.QuestionText, "error", err)
		return
	}

	roundID := uuid.NewString()

	sessionID, err := r.log.Append(r.groupID, question.QuestionText)
	if err != nil {
		logger.Error("Failed to record round audit entry", "group_id", r.groupID, "error", err)
	}

	if err := r.emitter.QuestionPosted(r.groupID, roundID, question, options); err != nil {
		// A single transport failure must not lose the rest of the quiz
		logger.Error("Failed to post question, skipping round", "group_id", r.groupID, "round_id", roundID, "error", err)
		return
	}

	deadline := time.NewTimer(time.Duration(r.roundTimer()) * r.unit)
	defer deadline.Stop()

	credited := make(map[int64]bool)
	won := false

collect:
	for {
		select {
		case <-deadline.C:
			break collect

		case answer := <-r.answers:
			if answer.RoundID != roundID {
				continue // stale event from a previous round
			}
			if answer.Choice != question.CorrectAnswer || credited[answer.UserID] {
				continue
			}
			if r.policy == FirstCorrectWins && won {
				continue
			}
			if err := r.scorer.AwardAnswer(answer.UserID, answer.Username); err != nil {
				logger.Error("Failed to award points", "group_id", r.groupID, "user_id", answer.UserID, "error", err)
				continue
			}
			credited[answer.UserID] = true
			if !won {
				won = true
				if sessionID != 0 {
					if err := r.log.MarkAnswered(sessionID); err != nil {
						logger.Error("Failed to mark round answered", "group_id", r.groupID, "error", err)
					}
				}
			}

		case hint := <-r.hints:
			if hint.RoundID != roundID {
				continue
			}
			ok, err := r.scorer.SpendCoin(hint.UserID)
			if err != nil {
				logger.Error("Failed to spend coin for hint", "group_id", r.groupID, "user_id", hint.UserID, "error", err)
				continue
			}
			if !ok {
				if err := r.emitter.HintDenied(r.groupID, hint.UserID, hint.Username); err != nil {
					logger.Error("Failed to deliver hint rejection", "group_id", r.groupID, "error", err)
				}
				continue
			}
			if err := r.emitter.HintRevealed(r.groupID, hint.UserID, hint.Username, question.Hint); err != nil {
				logger.Error("Failed to deliver hint", "group_id", r.groupID, "error", err)
			}
		}
	}

	scoreboard, err := r.scorer.Scoreboard()
	if err != nil {
		logger.Error("Failed to load scoreboard", "group_id", r.groupID, "error", err)
	}
	if err := r.emitter.RoundClosed(r.groupID, roundID, question.CorrectAnswer, scoreboard); err != nil {
		logger.Error("Failed to announce round result", "group_id", r.groupID, "round_id", roundID, "error", err)
	}
}
