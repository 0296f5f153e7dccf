// Package video drives the external player that shows the carousel's
// video slides.
package video

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ivlev/videocarousel/internal/clock"
	"github.com/ivlev/videocarousel/internal/interval"
)

var ErrNotLoaded = errors.New("no video loaded")

// Player plays one video at a time. Natural end of playback is reported
// through the EndedFunc given to the implementation; Stop never reports.
type Player interface {
	Load(ctx context.Context, url string) error
	Play(ctx context.Context) error
	Stop() error
}

type EndedFunc func(url string)

var (
	_ Player = (*TimedPlayer)(nil)
	_ Player = (*FFplayPlayer)(nil)
)

// TimedPlayer pretends to play each video for a known duration. It backs
// dry runs and tests.
type TimedPlayer struct {
	durations map[string]time.Duration
	fallback  time.Duration
	onEnded   EndedFunc
	timeout   *interval.Timeout

	mu      sync.Mutex
	url     string
	playing bool
	plays   int
}

func NewTimedPlayer(c clock.Clock, durations map[string]time.Duration, fallback time.Duration, onEnded EndedFunc) *TimedPlayer {
	if onEnded == nil {
		onEnded = func(string) {}
	}
	return &TimedPlayer{
		durations: durations,
		fallback:  fallback,
		onEnded:   onEnded,
		timeout:   interval.NewTimeout(c),
	}
}

func (p *TimedPlayer) Load(_ context.Context, url string) error {
	p.timeout.Cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.playing = false
	return nil
}

func (p *TimedPlayer) Play(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.url == "" {
		return ErrNotLoaded
	}
	if p.playing {
		return nil
	}
	p.playing = true
	p.plays++

	url := p.url
	d, ok := p.durations[url]
	if !ok {
		d = p.fallback
	}
	p.timeout.Set(d, func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		p.onEnded(url)
	})
	return nil
}

func (p *TimedPlayer) Stop() error {
	p.timeout.Cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	return nil
}

func (p *TimedPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *TimedPlayer) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Plays counts Play calls that actually started playback.
func (p *TimedPlayer) Plays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}
