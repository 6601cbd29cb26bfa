package quiz

import (
	"sync"
	"time"

	"github.com/mroshb/science_quiz_bot/pkg/logger"
)

// Supervisor enforces the one-session-per-group invariant and routes control
// commands and inbound events to the live runner for each group. Sessions for
// different groups run fully independently on their own goroutines.
type Supervisor struct {
	groups  GroupStore
	log     SessionLog
	bank    *Bank
	scorer  *Scorer
	emitter Emitter
	policy  AwardPolicy

	// roundUnit shrinks timer seconds in tests; zero means real seconds
	roundUnit time.Duration

	mu      sync.Mutex
	runners map[int64]*Runner
	wg      sync.WaitGroup
}

func NewSupervisor(groups GroupStore, log SessionLog, bank *Bank, scorer *Scorer, emitter Emitter, policy AwardPolicy) *Supervisor {
	return &Supervisor{
		groups:  groups,
		log:     log,
		bank:    bank,
		scorer:  scorer,
		emitter: emitter,
		policy:  policy,
		runners: make(map[int64]*Runner),
	}
}

// TryStart begins a session for the group, or fails with ErrAlreadyRunning.
// The registry check, the persisted-flag check and the runner registration
// happen under one mutex so two near-simultaneous starts cannot both win;
// the Store flag alone cannot prevent that race.
func (s *Supervisor) TryStart(groupID int64, category string) error {
	questions, err := s.bank.Fetch(category)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.runners[groupID]; exists {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	running, err := s.groups.IsRunning(groupID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	group, err := s.groups.GetOrCreate(groupID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.groups.SetRunning(groupID, true); err != nil {
		s.mu.Unlock()
		return err
	}

	runner := newRunner(groupID, category, group.TimerSeconds, s.bank.Shuffle(questions),
		s.groups, s.log, s.scorer, s.emitter, s.policy)
	if s.roundUnit > 0 {
		runner.unit = s.roundUnit
	}
	s.runners[groupID] = runner
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		runner.Run()
		s.release(groupID)
	}()
	return nil
}

// Stop requests cooperative termination of the group's session. The in-flight
// round finishes; the loop exits at the next round boundary.
func (s *Supervisor) Stop(groupID int64) error {
	s.mu.Lock()
	runner, ok := s.runners[groupID]
	s.mu.Unlock()
	if !ok {
		s.clearStaleFlag(groupID)
		return ErrNotRunning
	}
	runner.Stop()
	return nil
}

// clearStaleFlag resets a persisted Running flag that has no live runner
// behind it. An unclean process exit can leave the flag set, which would lock
// the group out of new sessions forever; a stop command is the operator's way
// to recover.
func (s *Supervisor) clearStaleFlag(groupID int64) {
	running, err := s.groups.IsRunning(groupID)
	if err != nil || !running {
		return
	}
	logger.Warn("Clearing stale running flag with no live session", "group_id", groupID)
	if err := s.groups.SetRunning(groupID, false); err != nil {
		logger.Error("Failed to clear stale running flag", "group_id", groupID, "error", err)
	}
}

// SetTimer persists the per-round timer. A live session picks it up on its
// next round; the in-flight round keeps its committed deadline.
func (s *Supervisor) SetTimer(groupID int64, seconds int) error {
	return s.groups.SetTimer(groupID, seconds)
}

// SubmitAnswer routes an answer to the group's live runner. Answers arriving
// after the session ended are dropped.
func (s *Supervisor) SubmitAnswer(groupID int64, answer Answer) error {
	s.mu.Lock()
	runner, ok := s.runners[groupID]
	s.mu.Unlock()
	if !ok {
		return ErrNotRunning
	}
	runner.SubmitAnswer(answer)
	return nil
}

// RequestHint routes a hint request to the group's live runner
func (s *Supervisor) RequestHint(groupID int64, hint HintRequest) error {
	s.mu.Lock()
	runner, ok := s.runners[groupID]
	s.mu.Unlock()
	if !ok {
		return ErrNotRunning
	}
	runner.RequestHint(hint)
	return nil
}

// Running reports whether a runner is registered for the group
func (s *Supervisor) Running(groupID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runners[groupID]
	return ok
}

// StopAll asks every live session to terminate; used at shutdown
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	runners := make([]*Runner, 0, len(s.runners))
	for _, runner := range s.runners {
		runners = append(runners, runner)
	}
	s.mu.Unlock()

	for _, runner := range runners {
		runner.Stop()
	}
}

// Wait blocks until all session goroutines have finished
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) release(groupID int64) {
	s.mu.Lock()
	delete(s.runners, groupID)
	s.mu.Unlock()
}
