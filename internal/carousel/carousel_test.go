package carousel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/videocarousel/internal/clock"
	"github.com/ivlev/videocarousel/internal/countdown"
	"github.com/ivlev/videocarousel/internal/notify"
	"github.com/ivlev/videocarousel/internal/playlist"
	"github.com/ivlev/videocarousel/internal/video"
)

const (
	urlA = "https://www.youtube.com/watch?v=7lUHfM0jI60"
	urlB = "https://www.youtube.com/watch?v=LJpgvQ0DixE"
)

type recordingNotifier struct {
	notices []notify.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notice) error {
	r.notices = append(r.notices, n)
	return nil
}

type harness struct {
	clock    *clock.Fake
	player   *video.TimedPlayer
	notifier *recordingNotifier
	car      *Carousel
	events   []Event
}

func setup(t *testing.T, infinite bool) *harness {
	t.Helper()
	h := &harness{
		clock:    clock.NewFake(time.Unix(1700000000, 0)),
		notifier: &recordingNotifier{},
	}
	h.player = video.NewTimedPlayer(h.clock, map[string]time.Duration{
		urlA: 10 * time.Second,
		urlB: 20 * time.Second,
	}, time.Second, func(url string) { h.car.VideoEnded(url) })

	p, err := playlist.FromURLs("Welcome", []string{urlA, urlB})
	require.NoError(t, err)

	h.car, err = New(Config{
		Slides:        p.Slides,
		WelcomeDelay:  DefaultWelcomeDelay,
		AutoplayDelay: DefaultAutoplayDelay,
		Infinite:      infinite,
		Countdown:     countdown.Range{CountStart: 3},
		Player:        h.player,
		Notifier:      h.notifier,
		Clock:         h.clock,
		Observer:      func(ev Event) { h.events = append(h.events, ev) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { h.car.Close() })
	return h
}

func (h *harness) kinds() []EventKind {
	var out []EventKind
	for _, ev := range h.events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestCarouselFullCycle(t *testing.T) {
	h := setup(t, true)

	h.car.Start()
	assert.Equal(t, 0, h.car.Index())
	assert.Equal(t, playlist.KindWelcome, h.car.Current().Kind)

	// Welcome slide stays for five seconds.
	h.clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, 0, h.car.Index())
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, h.car.Index())
	require.Len(t, h.notifier.notices, 1)
	assert.Equal(t, notify.Notice{Message: "Video", Description: "Video: " + urlA}, h.notifier.notices[0])
	assert.Equal(t, urlA, h.player.URL())
	assert.False(t, h.player.Playing())

	// Playback starts three seconds after the slide appears.
	h.clock.Advance(3 * time.Second)
	assert.True(t, h.player.Playing())

	// First video ends after ten seconds and the next one is shown.
	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 2, h.car.Index())
	assert.Equal(t, urlB, h.player.URL())
	assert.False(t, h.car.Countdown().IsRunning())

	h.clock.Advance(3 * time.Second)
	assert.True(t, h.player.Playing())

	// Last video ends: countdown runs 3 -> 0 and finishes on the next tick.
	h.clock.Advance(20 * time.Second)
	assert.Equal(t, 2, h.car.Index())
	assert.True(t, h.car.Countdown().IsRunning())
	assert.Equal(t, 3, h.car.Countdown().Count())

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 0, h.car.Countdown().Count())
	assert.Equal(t, 2, h.car.Index())

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.car.Index(), "finished countdown wraps to the welcome slide")
	assert.Equal(t, 1, h.car.Loops())
	assert.False(t, h.car.Countdown().IsRunning())

	assert.Equal(t, []EventKind{
		SlideShown, SlideShown, PlaybackStarted,
		SlideShown, PlaybackStarted,
		CountdownStarted,
		Wrapped, SlideShown,
	}, h.kinds())

	// Second round begins like the first.
	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 1, h.car.Index())
	assert.Equal(t, 2, h.player.Plays())
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 3, h.player.Plays())
}

func TestCarouselStopsAtEndWhenNotInfinite(t *testing.T) {
	h := setup(t, false)
	h.car.Start()

	h.clock.Advance(5*time.Second + 3*time.Second + 10*time.Second + 3*time.Second + 20*time.Second)
	assert.True(t, h.car.Countdown().IsRunning())

	h.clock.Advance(time.Minute)
	assert.Equal(t, 2, h.car.Index())
	assert.Equal(t, 0, h.car.Loops())
	assert.False(t, h.car.Countdown().IsRunning())
	assert.Equal(t, 0, h.clock.Pending())
}

func TestCarouselSlideChangeCancelsAutoplay(t *testing.T) {
	h := setup(t, true)
	h.car.Start()
	h.clock.Advance(5 * time.Second)
	require.Equal(t, 1, h.car.Index())

	h.clock.Advance(2 * time.Second)
	h.car.Next()
	assert.Equal(t, 2, h.car.Index())

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.player.Plays(), "autoplay for the hidden slide must not fire")

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, 1, h.player.Plays())
	assert.Equal(t, urlB, h.player.URL())
}

func TestCarouselIgnoresStaleEnd(t *testing.T) {
	h := setup(t, true)
	h.car.Start()

	h.car.VideoEnded(urlA)
	assert.Equal(t, 0, h.car.Index(), "welcome slide is not a video")

	h.clock.Advance(5 * time.Second)
	h.car.VideoEnded(urlB)
	assert.Equal(t, 1, h.car.Index())
	assert.False(t, h.car.Countdown().IsRunning())

	h.car.VideoEnded(urlA)
	assert.Equal(t, 2, h.car.Index())
}

func TestCarouselCloseStopsEverything(t *testing.T) {
	h := setup(t, true)
	h.car.Start()
	h.clock.Advance(8 * time.Second)
	require.True(t, h.player.Playing())

	require.NoError(t, h.car.Close())
	assert.False(t, h.player.Playing())

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.car.Index())
	assert.Equal(t, 0, h.clock.Pending())

	h.car.Next()
	assert.Equal(t, 1, h.car.Index())
	assert.NoError(t, h.car.Close())
}

func TestNewValidates(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	player := video.NewTimedPlayer(c, nil, time.Second, nil)

	_, err := New(Config{Slides: []playlist.Slide{{Kind: playlist.KindWelcome}}, Player: player})
	assert.ErrorIs(t, err, ErrNoVideos)

	slides := []playlist.Slide{{Kind: playlist.KindVideo, URL: urlA}}
	_, err = New(Config{Slides: slides})
	assert.Error(t, err)

	_, err = New(Config{Slides: slides, Player: player, Countdown: countdown.Range{IntervalMs: countdown.Int(-1)}})
	assert.ErrorIs(t, err, countdown.ErrInvalidConfig)
}

// stubPlayer fails Load or Play for the listed urls.
type stubPlayer struct {
	failLoad map[string]bool
	failPlay map[string]bool
	url      string
	played   []string
}

func (p *stubPlayer) Load(_ context.Context, url string) error {
	if p.failLoad[url] {
		return errors.New("cannot open " + url)
	}
	p.url = url
	return nil
}

func (p *stubPlayer) Play(_ context.Context) error {
	if p.failPlay[p.url] {
		return errors.New("cannot play " + p.url)
	}
	p.played = append(p.played, p.url)
	return nil
}

func (p *stubPlayer) Stop() error { return nil }

func newStubCarousel(t *testing.T, player *stubPlayer) (*Carousel, *clock.Fake, *[]Event) {
	t.Helper()
	fc := clock.NewFake(time.Unix(1700000000, 0))
	p, err := playlist.FromURLs("Welcome", []string{urlA, urlB})
	require.NoError(t, err)

	var events []Event
	car, err := New(Config{
		Slides:   p.Slides,
		Infinite: true,
		Player:   player,
		Notifier: &recordingNotifier{},
		Clock:    fc,
		Observer: func(ev Event) { events = append(events, ev) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { car.Close() })
	return car, fc, &events
}

func TestCarouselDefaultDelays(t *testing.T) {
	player := &stubPlayer{}
	car, fc, _ := newStubCarousel(t, player)
	car.Start()

	fc.Advance(time.Millisecond)
	assert.Equal(t, 0, car.Index(), "welcome slide uses the default delay")

	fc.Advance(DefaultWelcomeDelay - time.Millisecond)
	assert.Equal(t, 1, car.Index())

	fc.Advance(DefaultAutoplayDelay - time.Millisecond)
	assert.Empty(t, player.played)
	fc.Advance(time.Millisecond)
	assert.Equal(t, []string{urlA}, player.played)
}

func TestCarouselSkipsVideoThatFailsToLoad(t *testing.T) {
	player := &stubPlayer{failLoad: map[string]bool{urlA: true}}
	car, fc, _ := newStubCarousel(t, player)
	car.Start()

	fc.Advance(DefaultWelcomeDelay)
	assert.Equal(t, 2, car.Index())
	assert.Equal(t, urlB, player.url)

	fc.Advance(DefaultAutoplayDelay)
	assert.Equal(t, []string{urlB}, player.played)
}

func TestCarouselSkipsVideoThatFailsToPlay(t *testing.T) {
	player := &stubPlayer{failPlay: map[string]bool{urlA: true}}
	car, fc, events := newStubCarousel(t, player)
	car.Start()

	fc.Advance(DefaultWelcomeDelay)
	require.Equal(t, 1, car.Index())

	fc.Advance(DefaultAutoplayDelay)
	assert.Equal(t, 2, car.Index())
	assert.Empty(t, player.played)

	fc.Advance(DefaultAutoplayDelay)
	assert.Equal(t, []string{urlB}, player.played)

	var started []int
	for _, ev := range *events {
		if ev.Kind == PlaybackStarted {
			started = append(started, ev.Index)
		}
	}
	assert.Equal(t, []int{2}, started)
}
