package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ivlev/videocarousel/internal/carousel"
	"github.com/ivlev/videocarousel/internal/clock"
	"github.com/ivlev/videocarousel/internal/config"
	"github.com/ivlev/videocarousel/internal/notify"
	"github.com/ivlev/videocarousel/internal/playlist"
	"github.com/ivlev/videocarousel/internal/source"
	"github.com/ivlev/videocarousel/internal/video"
	"github.com/ivlev/videocarousel/internal/welcome"
)

// DefaultPlaylistDir is searched for the newest playlist when neither a
// playlist file nor inline videos are configured.
const DefaultPlaylistDir = "playlists"

type Project struct {
	Config *config.Config
	Clock  clock.Clock
	Logger *slog.Logger
	// Prober reads durations for the timed player. Defaults to ffprobe.
	Prober *video.Prober
	// Out receives operator-facing progress and the stats report.
	Out io.Writer

	stats stats
}

// Counts sums up what happened during a run.
type Counts struct {
	Slides     int
	Plays      int
	Countdowns int
	Loops      int
}

type stats struct {
	mu sync.Mutex
	c  Counts
}

func (s *stats) record(ev carousel.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Kind {
	case carousel.SlideShown:
		s.c.Slides++
	case carousel.PlaybackStarted:
		s.c.Plays++
	case carousel.CountdownStarted:
		s.c.Countdowns++
	case carousel.Wrapped:
		s.c.Loops++
	}
}

// Counts returns the carousel events seen so far.
func (p *Project) Counts() Counts {
	p.stats.mu.Lock()
	defer p.stats.mu.Unlock()
	return p.stats.c
}

func NewProject(cfg *config.Config, logger *slog.Logger) *Project {
	return &Project{
		Config: cfg,
		Logger: logger,
	}
}

func (p *Project) defaults() {
	if p.Clock == nil {
		p.Clock = clock.Real()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Prober == nil {
		p.Prober = video.NewProber(p.Config.Player.Probe)
	}
}

// Build prepares the carousel without starting it.
func (p *Project) Build(ctx context.Context) (*carousel.Carousel, error) {
	p.defaults()
	cfg := p.Config
	logger := p.Logger.With("module", "engine")

	list, err := p.resolvePlaylist()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.Out, "[*] Slides: %d | Videos: %d | Player: %s\n", len(list.Slides), len(list.URLs()), cfg.Player.Kind)

	if cfg.Welcome.Output != "" {
		if err := p.renderWelcome(); err != nil {
			return nil, fmt.Errorf("welcome card: %w", err)
		}
		fmt.Fprintf(p.Out, "[*] Welcome card: %s\n", cfg.Welcome.Output)
	}

	var car *carousel.Carousel
	onEnded := func(url string) {
		if car != nil {
			car.VideoEnded(url)
		}
	}

	var player video.Player
	switch cfg.Player.Kind {
	case config.PlayerTimed:
		durations := p.durations(ctx, list, logger)
		player = video.NewTimedPlayer(p.Clock, durations, cfg.Player.Fallback, onEnded)
	default:
		ff := video.NewFFplayPlayer(cfg.Player.Binary, onEnded, p.Logger)
		ff.Fullscreen = cfg.Player.Fullscreen
		player = ff
	}

	car, err = carousel.New(carousel.Config{
		Slides:        list.Slides,
		WelcomeDelay:  cfg.Carousel.WelcomeDelay,
		AutoplayDelay: cfg.Carousel.AutoplayDelay,
		Infinite:      cfg.Carousel.Infinite,
		Countdown:     cfg.Countdown.Input,
		Player:        player,
		Notifier:      notify.NewMulti(notify.NewLog(p.Logger), &consoleNotifier{out: p.Out}),
		Clock:         p.Clock,
		Logger:        p.Logger,
		Observer:      p.stats.record,
	})
	if err != nil {
		return nil, err
	}
	return car, nil
}

// Run builds and starts the carousel, then blocks until ctx is done.
func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()

	car, err := p.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.Out, "--- [VIDEO CAROUSEL] ---")
	car.Start()
	<-ctx.Done()

	if err := car.Close(); err != nil {
		p.Logger.Warn("Closing carousel failed", "module", "engine", "error", err)
	}

	if p.Config.App.ShowStats {
		p.report(time.Since(startTime))
	}
	return nil
}

func (p *Project) resolvePlaylist() (*playlist.Playlist, error) {
	cfg := p.Config
	switch {
	case len(cfg.Videos) > 0:
		return playlist.FromURLs(cfg.Welcome.Title, cfg.Videos)
	case cfg.Playlist != "":
		return playlist.Read(cfg.Playlist)
	}

	latest, err := playlist.FindLatest(DefaultPlaylistDir)
	if err != nil {
		return nil, fmt.Errorf("no videos configured and no playlist in %s: %w", DefaultPlaylistDir, err)
	}
	fmt.Fprintf(p.Out, "[*] Using playlist: %s\n", latest)
	return playlist.Read(latest)
}

// durations merges the lengths stored in the playlist with probed ones.
// Videos that cannot be probed fall back to the configured duration.
func (p *Project) durations(ctx context.Context, list *playlist.Playlist, logger *slog.Logger) map[string]time.Duration {
	durations := list.Durations()

	var missing []string
	for _, u := range list.URLs() {
		if _, ok := durations[u]; !ok {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return durations
	}

	probed, err := p.Prober.ProbeAll(ctx, missing, p.Config.Player.Workers)
	if err != nil {
		logger.Warn("Some durations could not be probed, using fallback", "fallback", p.Config.Player.Fallback, "error", err)
	}
	for u, d := range probed {
		durations[u] = d
	}
	return durations
}

func (p *Project) renderWelcome() error {
	wc := p.Config.Welcome
	card := welcome.Card{
		Width:  wc.Width,
		Height: wc.Height,
		Title:  wc.Title,
		Lines:  wc.Lines,
		Link:   wc.Link,
	}

	if wc.Background != "" {
		src, err := source.Open(wc.Background)
		if err != nil {
			return err
		}
		defer src.Close()
		if src.PageCount() == 0 {
			return fmt.Errorf("background %s has no pages", wc.Background)
		}
		img, err := src.RenderPage(0, wc.DPI)
		if err != nil {
			return err
		}
		card.Background = img
	}

	return welcome.WritePNG(card, wc.Output)
}

func (p *Project) report(total time.Duration) {
	c := p.Counts()
	fmt.Fprintf(p.Out,
		"--- [CAROUSEL REPORT] ---\n"+
			"Build: %s\n"+
			"Run Time: %.2fs\n"+
			"Slides Shown: %d\n"+
			"Videos Played: %d\n"+
			"Countdowns: %d\n"+
			"Loops: %d\n"+
			"-------------------------\n",
		p.Config.App.BuildVersion, total.Seconds(), c.Slides, c.Plays, c.Countdowns, c.Loops,
	)
}

// consoleNotifier prints notices for whoever watches the terminal.
type consoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func (c *consoleNotifier) Notify(_ context.Context, n notify.Notice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[>] %s\n", n.Description)
	return err
}
