package core

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Schedule holds the delay windows of the synthetic message generator.
type Schedule struct {
	FirstMin time.Duration
	FirstMax time.Duration
	RearmMin time.Duration
	RearmMax time.Duration
}

// DefaultSchedule returns the 5-13s initial and 10-30s follow-up windows.
func DefaultSchedule() Schedule {
	return Schedule{
		FirstMin: 5 * time.Second,
		FirstMax: 13 * time.Second,
		RearmMin: 10 * time.Second,
		RearmMax: 30 * time.Second,
	}
}

// normalized replaces a window with a non-positive bound by its default.
func (s Schedule) normalized() Schedule {
	def := DefaultSchedule()
	if s.FirstMin <= 0 || s.FirstMax <= 0 {
		s.FirstMin, s.FirstMax = def.FirstMin, def.FirstMax
	}
	if s.RearmMin <= 0 || s.RearmMax <= 0 {
		s.RearmMin, s.RearmMax = def.RearmMin, def.RearmMax
	}
	return s
}

func (s Schedule) first(r *rand.Rand) time.Duration {
	return uniformDelay(r, s.FirstMin, s.FirstMax)
}

func (s Schedule) rearm(r *rand.Rand) time.Duration {
	return uniformDelay(r, s.RearmMin, s.RearmMax)
}

// uniformDelay draws from [lo, hi). A degenerate window returns lo.
func uniformDelay(r *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.Int64N(int64(hi-lo)))
}

// Scheduler owns at most one pending one-shot task.
// Every Schedule or Cancel invalidates the tokens handed out before it, so a
// callback that checks Valid under the caller's lock never runs after Cancel.
type Scheduler struct {
	clock clock.Clock

	mu    sync.Mutex
	timer *clock.Timer
	epoch uint64
}

// NewScheduler creates a scheduler driven by c.
func NewScheduler(c clock.Clock) *Scheduler {
	return &Scheduler{clock: c}
}

// Schedule replaces any pending task with fn, fired once after d.
// fn receives the token identifying this arming.
func (s *Scheduler) Schedule(d time.Duration, fn func(token uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.epoch++
	token := s.epoch
	s.timer = s.clock.AfterFunc(d, func() {
		if s.Valid(token) {
			fn(token)
		}
	})
	return token
}

// Cancel drops the pending task, if any. Safe to call repeatedly.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.epoch++
}

// Valid reports whether token belongs to the latest arming and was not cancelled.
func (s *Scheduler) Valid(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.epoch && s.timer != nil
}

// Release marks the task identified by token as finished without re-arming.
func (s *Scheduler) Release(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == s.epoch {
		s.timer = nil
	}
}

// Pending reports whether a task is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
