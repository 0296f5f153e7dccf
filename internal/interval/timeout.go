package interval

import (
	"sync"
	"time"

	"github.com/ivlev/videocarousel/internal/clock"
)

// Timeout runs a function once after a delay. Setting a new one replaces
// the pending call.
type Timeout struct {
	clock clock.Clock

	mu     sync.Mutex
	timer  clock.Timer
	gen    uint64
	closed bool
}

func NewTimeout(c clock.Clock) *Timeout {
	if c == nil {
		c = clock.Real()
	}
	return &Timeout{clock: c}
}

func (t *Timeout) Set(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.cancelLocked()
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call and reports whether there was one.
func (t *Timeout) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

func (t *Timeout) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Timeout) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.closed = true
}

func (t *Timeout) cancelLocked() bool {
	t.gen++
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}
