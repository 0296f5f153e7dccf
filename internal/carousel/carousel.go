// Package carousel cycles through a welcome slide and a list of videos.
//
// The welcome slide stays up for WelcomeDelay. A video slide posts a
// notice, loads its video and starts playback AutoplayDelay later. When a
// video ends the carousel moves on; after the last video it runs the
// countdown first and moves on once the countdown finishes.
package carousel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ivlev/videocarousel/internal/clock"
	"github.com/ivlev/videocarousel/internal/countdown"
	"github.com/ivlev/videocarousel/internal/interval"
	"github.com/ivlev/videocarousel/internal/notify"
	"github.com/ivlev/videocarousel/internal/playlist"
	"github.com/ivlev/videocarousel/internal/video"
)

const (
	DefaultWelcomeDelay  = 5 * time.Second
	DefaultAutoplayDelay = 3 * time.Second
)

var ErrNoVideos = errors.New("carousel needs at least one video slide")

type EventKind int

const (
	SlideShown EventKind = iota + 1
	PlaybackStarted
	CountdownStarted
	// Wrapped is emitted when the carousel goes from the last slide back
	// to the first.
	Wrapped
)

func (k EventKind) String() string {
	switch k {
	case SlideShown:
		return "slide-shown"
	case PlaybackStarted:
		return "playback-started"
	case CountdownStarted:
		return "countdown-started"
	case Wrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind  EventKind
	Index int
	Slide playlist.Slide
}

type Config struct {
	Slides []playlist.Slide
	// Zero delays fall back to DefaultWelcomeDelay and DefaultAutoplayDelay.
	WelcomeDelay  time.Duration
	AutoplayDelay time.Duration
	Infinite      bool
	// Countdown runs after the last video ends.
	Countdown countdown.Input

	Player   video.Player
	Notifier notify.Notifier
	Clock    clock.Clock
	Logger   *slog.Logger
	Observer func(Event)
}

type Carousel struct {
	slides        []playlist.Slide
	lastVideo     int
	welcomeDelay  time.Duration
	autoplayDelay time.Duration
	infinite      bool

	player    video.Player
	notifier  notify.Notifier
	logger    *slog.Logger
	observer  func(Event)
	countdown *countdown.Countdown
	welcome   *interval.Timeout
	autoplay  *interval.Timeout

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	index   int
	loops   int
	started bool
	closed  bool
}

func New(cfg Config) (*Carousel, error) {
	lastVideo := -1
	for i, s := range cfg.Slides {
		if s.Kind == playlist.KindVideo {
			lastVideo = i
		}
	}
	if lastVideo == -1 {
		return nil, ErrNoVideos
	}
	if cfg.Player == nil {
		return nil, errors.New("carousel needs a player")
	}
	if cfg.WelcomeDelay <= 0 {
		cfg.WelcomeDelay = DefaultWelcomeDelay
	}
	if cfg.AutoplayDelay <= 0 {
		cfg.AutoplayDelay = DefaultAutoplayDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewLog(cfg.Logger)
	}
	if cfg.Observer == nil {
		cfg.Observer = func(Event) {}
	}
	if cfg.Countdown == nil {
		cfg.Countdown = countdown.Range{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Carousel{
		slides:        cfg.Slides,
		lastVideo:     lastVideo,
		welcomeDelay:  cfg.WelcomeDelay,
		autoplayDelay: cfg.AutoplayDelay,
		infinite:      cfg.Infinite,
		player:        cfg.Player,
		notifier:      cfg.Notifier,
		logger:        cfg.Logger.With("module", "carousel"),
		observer:      cfg.Observer,
		welcome:       interval.NewTimeout(cfg.Clock),
		autoplay:      interval.NewTimeout(cfg.Clock),
		ctx:           ctx,
		cancel:        cancel,
	}

	cd, err := countdown.New(cfg.Countdown,
		countdown.WithClock(cfg.Clock),
		countdown.WithLogger(cfg.Logger),
		countdown.WithObserver(c.onCountdown),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("carousel countdown: %w", err)
	}
	c.countdown = cd

	return c, nil
}

// Start shows the first slide. Calling it again does nothing.
func (c *Carousel) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	ev := c.showLocked(0)
	c.mu.Unlock()

	c.observer(ev)
}

// Next moves to the following slide, wrapping around when infinite.
func (c *Carousel) Next() {
	c.mu.Lock()
	if c.closed || !c.started {
		c.mu.Unlock()
		return
	}

	next := c.index + 1
	var events []Event
	if next >= len(c.slides) {
		if !c.infinite {
			c.mu.Unlock()
			c.logger.Info("Reached the last slide")
			return
		}
		next = 0
		c.loops++
		events = append(events, Event{Kind: Wrapped, Index: 0, Slide: c.slides[0]})
	}
	events = append(events, c.showLocked(next))
	c.mu.Unlock()

	for _, ev := range events {
		c.observer(ev)
	}
}

// VideoEnded reports that playback of url finished. Reports for any
// slide other than the current one are ignored.
func (c *Carousel) VideoEnded(url string) {
	c.mu.Lock()
	if c.closed || !c.started {
		c.mu.Unlock()
		return
	}
	cur := c.slides[c.index]
	if cur.Kind != playlist.KindVideo || cur.URL != url {
		c.mu.Unlock()
		c.logger.Debug("Ignoring end of a video that is not on screen", "url", url)
		return
	}
	index := c.index
	last := index == c.lastVideo
	c.mu.Unlock()

	if !last {
		c.Next()
		return
	}

	c.logger.Info("Last video ended, starting countdown", "count", c.countdown.Config().CountStart)
	c.countdown.Reset()
	c.countdown.Start()
	c.observer(Event{Kind: CountdownStarted, Index: index, Slide: cur})
}

func (c *Carousel) onCountdown(s countdown.Snapshot) {
	if s.Event != countdown.Finished {
		return
	}
	c.Next()
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Carousel) Current() playlist.Slide {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slides[c.index]
}

// Loops counts how many times the carousel wrapped around.
func (c *Carousel) Loops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loops
}

// Countdown exposes the countdown shown after the last video.
func (c *Carousel) Countdown() *countdown.Countdown {
	return c.countdown
}

// Close cancels pending timers and stops the player.
func (c *Carousel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.welcome.Close()
	c.autoplay.Close()
	c.countdown.Close()
	c.cancel()
	return c.player.Stop()
}

func (c *Carousel) showLocked(i int) Event {
	c.index = i
	slide := c.slides[i]

	c.welcome.Cancel()
	c.autoplay.Cancel()
	c.countdown.Stop()

	c.logger.Info("Showing slide", "index", i, "kind", slide.Kind, "url", slide.URL)

	switch slide.Kind {
	case playlist.KindVideo:
		c.showVideoLocked(i, slide)
	default:
		if err := c.player.Stop(); err != nil {
			c.logger.Warn("Stopping player failed", "error", err)
		}
		c.welcome.Set(c.welcomeDelay, c.Next)
	}
	return Event{Kind: SlideShown, Index: i, Slide: slide}
}

func (c *Carousel) showVideoLocked(i int, slide playlist.Slide) {
	err := c.notifier.Notify(c.ctx, notify.Notice{
		Message:     "Video",
		Description: fmt.Sprintf("Video: %s", slide.URL),
	})
	if err != nil {
		c.logger.Warn("Notice failed", "error", err)
	}

	if err := c.player.Load(c.ctx, slide.URL); err != nil {
		c.logger.Error("Loading video failed, skipping", "url", slide.URL, "error", err)
		c.welcome.Set(0, c.Next)
		return
	}

	c.autoplay.Set(c.autoplayDelay, func() { c.play(i, slide) })
}

func (c *Carousel) play(i int, slide playlist.Slide) {
	c.mu.Lock()
	if c.closed || c.index != i {
		c.mu.Unlock()
		return
	}
	err := c.player.Play(c.ctx)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("Playback failed, skipping", "url", slide.URL, "error", err)
		c.Next()
		return
	}
	c.observer(Event{Kind: PlaybackStarted, Index: i, Slide: slide})
}
