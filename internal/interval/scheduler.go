// Package interval runs callbacks on a repeating period or once after a
// delay. Both schedulers own their timer and release it on Close.
package interval

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ivlev/videocarousel/internal/clock"
)

// MinPeriod is the shortest period a Scheduler arms. A zero delay is a
// valid request and runs at this period.
const MinPeriod = time.Millisecond

// Delay is either Off or a period created with Every.
type Delay struct {
	d  time.Duration
	on bool
}

// Off disables the scheduler.
var Off = Delay{}

// Every returns a delay of d. Negative values behave like zero.
func Every(d time.Duration) Delay {
	if d < 0 {
		d = 0
	}
	return Delay{d: d, on: true}
}

func (d Delay) Enabled() bool { return d.on }

func (d Delay) Duration() time.Duration { return d.d }

func (d Delay) String() string {
	if !d.on {
		return "off"
	}
	return d.d.String()
}

func (d Delay) period() time.Duration {
	if d.d < MinPeriod {
		return MinPeriod
	}
	return d.d
}

// Scheduler invokes the most recently supplied callback every period.
//
// Replacing the callback never touches the timer; only a different Delay
// re-arms it. The next period is armed after the callback returns, so
// fires of one Scheduler never overlap.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	callback atomic.Pointer[func()]

	mu       sync.Mutex
	delay    Delay
	timer    clock.Timer
	deadline time.Time
	gen      uint64
	closed   bool
}

func NewScheduler(c clock.Clock, logger *slog.Logger) *Scheduler {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:  c,
		logger: logger.With("module", "interval"),
	}
}

// Schedule records callback as the one to run and applies delay. With
// Off any armed timer is cleared.
func (s *Scheduler) Schedule(callback func(), delay Delay) {
	s.callback.Store(&callback)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || delay == s.delay {
		return
	}

	s.stopLocked()
	s.delay = delay
	if !delay.on {
		s.logger.Debug("Interval cleared")
		return
	}

	s.logger.Debug("Interval armed", "delay", delay)
	s.armLocked(s.gen, s.clock.Now().Add(delay.period()))
}

// Active reports whether a timer is currently armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Close clears the timer. Later Schedule calls are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.delay = Off
	s.closed = true
}

func (s *Scheduler) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) armLocked(gen uint64, deadline time.Time) {
	wait := deadline.Sub(s.clock.Now())
	if wait < 0 {
		wait = 0
	}
	s.deadline = deadline
	s.timer = s.clock.AfterFunc(wait, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if fn := s.callback.Load(); fn != nil && *fn != nil {
		(*fn)()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The callback may have changed the delay or closed us.
	if gen != s.gen {
		return
	}
	s.armLocked(gen, s.deadline.Add(s.delay.period()))
}
