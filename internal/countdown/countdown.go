// Package countdown moves a counter one step per interval towards a stop
// value and halts itself once the stop value has been observed.
package countdown

import (
	"log/slog"
	"sync"

	"github.com/ivlev/videocarousel/internal/clock"
	"github.com/ivlev/videocarousel/internal/counter"
	"github.com/ivlev/videocarousel/internal/interval"
	"github.com/ivlev/videocarousel/internal/toggle"
)

type Event int

const (
	Started Event = iota + 1
	Stopped
	Reset
	Ticked
	// Finished is emitted by the tick that found the count at the stop
	// value and stopped the countdown.
	Finished
)

func (e Event) String() string {
	switch e {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	case Reset:
		return "reset"
	case Ticked:
		return "ticked"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

type Snapshot struct {
	Count   int
	Running bool
	Event   Event
}

// Observer is called after every state change, outside internal locks.
type Observer func(Snapshot)

type Option func(*Countdown)

func WithClock(c clock.Clock) Option {
	return func(cd *Countdown) { cd.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(cd *Countdown) { cd.logger = l }
}

func WithObserver(o Observer) Option {
	return func(cd *Countdown) { cd.observers = append(cd.observers, o) }
}

type Countdown struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu        sync.Mutex
	count     *counter.Counter
	running   *toggle.Flag
	scheduler *interval.Scheduler
	observers []Observer
	closed    bool
}

// New builds an idle countdown. It fails with ErrInvalidConfig when the
// input cannot be normalized.
func New(in Input, opts ...Option) (*Countdown, error) {
	cfg, err := Normalize(in)
	if err != nil {
		return nil, err
	}

	cd := &Countdown{cfg: cfg}
	for _, opt := range opts {
		opt(cd)
	}
	if cd.clock == nil {
		cd.clock = clock.Real()
	}
	if cd.logger == nil {
		cd.logger = slog.Default()
	}
	cd.logger = cd.logger.With("module", "countdown")

	cd.count = counter.New(cfg.CountStart)
	cd.running = toggle.New(false)
	cd.scheduler = interval.NewScheduler(cd.clock, cd.logger)

	if !cfg.Reachable() {
		cd.logger.Warn("Countdown stop value is behind the start, it will only stop on demand",
			"start", cfg.CountStart, "stop", cfg.CountStop, "increment", cfg.IsIncrement)
	}
	return cd, nil
}

func (cd *Countdown) Config() Config { return cd.cfg }

func (cd *Countdown) Count() int { return cd.count.Count() }

func (cd *Countdown) IsRunning() bool { return cd.running.Value() }

// Start begins ticking from the current count. Starting a running
// countdown does nothing.
func (cd *Countdown) Start() {
	cd.mu.Lock()
	if cd.closed || cd.running.Value() {
		cd.mu.Unlock()
		return
	}
	cd.running.SetTrue()
	cd.syncLocked()
	snap := cd.snapshotLocked(Started)
	cd.mu.Unlock()

	cd.logger.Debug("Countdown started", "count", snap.Count)
	cd.notify(snap)
}

// Stop halts ticking and leaves the count where it is.
func (cd *Countdown) Stop() {
	cd.mu.Lock()
	if !cd.running.Value() {
		cd.mu.Unlock()
		return
	}
	cd.running.SetFalse()
	cd.syncLocked()
	snap := cd.snapshotLocked(Stopped)
	cd.mu.Unlock()

	cd.logger.Debug("Countdown stopped", "count", snap.Count)
	cd.notify(snap)
}

// Reset stops the countdown and restores the initial count. It does not
// start it again.
func (cd *Countdown) Reset() {
	cd.mu.Lock()
	cd.running.SetFalse()
	cd.syncLocked()
	cd.count.Reset()
	snap := cd.snapshotLocked(Reset)
	cd.mu.Unlock()

	cd.logger.Debug("Countdown reset", "count", snap.Count)
	cd.notify(snap)
}

// Close releases the timer. The countdown cannot be started afterwards.
func (cd *Countdown) Close() {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	cd.closed = true
	cd.running.SetFalse()
	cd.scheduler.Close()
}

func (cd *Countdown) tick() {
	cd.mu.Lock()
	if !cd.running.Value() {
		cd.mu.Unlock()
		return
	}

	var ev Event
	switch {
	case cd.count.Count() == cd.cfg.CountStop:
		cd.running.SetFalse()
		cd.syncLocked()
		ev = Finished
	case cd.cfg.IsIncrement:
		cd.count.Increment()
		ev = Ticked
	default:
		cd.count.Decrement()
		ev = Ticked
	}
	snap := cd.snapshotLocked(ev)
	cd.mu.Unlock()

	if ev == Finished {
		cd.logger.Info("Countdown finished", "count", snap.Count)
	}
	cd.notify(snap)
}

// syncLocked points the scheduler at the running flag: armed with the
// configured interval while running, off otherwise.
func (cd *Countdown) syncLocked() {
	delay := interval.Off
	if cd.running.Value() {
		delay = interval.Every(cd.cfg.Interval)
	}
	cd.scheduler.Schedule(cd.tick, delay)
}

func (cd *Countdown) snapshotLocked(ev Event) Snapshot {
	return Snapshot{
		Count:   cd.count.Count(),
		Running: cd.running.Value(),
		Event:   ev,
	}
}

func (cd *Countdown) notify(snap Snapshot) {
	cd.mu.Lock()
	observers := append([]Observer(nil), cd.observers...)
	cd.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}
