package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/videocarousel/internal/config"
	"github.com/ivlev/videocarousel/internal/countdown"
	"github.com/ivlev/videocarousel/internal/engine"
	"github.com/ivlev/videocarousel/internal/playlist"
	"github.com/ivlev/videocarousel/internal/system"
)

// buildVersion is overridden with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	configPtr := flag.String("config", "", "Path to a YAML config file (defaults are used when empty)")
	playlistPtr := flag.String("playlist", "", "Playlist YAML (default: newest file in playlists/ when no urls are given)")
	playerPtr := flag.String("player", "", "Player: ffplay or timed (timed only waits for each video's duration)")
	welcomeDelayPtr := flag.Duration("welcome-delay", 0, "How long the welcome slide stays up")
	autoplayDelayPtr := flag.Duration("autoplay-delay", 0, "Delay between showing a video slide and starting playback")
	countdownPtr := flag.Int("countdown", 0, "Seconds counted down after the last video")
	infinitePtr := flag.Bool("infinite", true, "Start over after the countdown")
	statsPtr := flag.Bool("stats", false, "Print a report when the carousel stops")
	logLevelPtr := flag.String("log-level", "", "Log level: debug, info, warn, error")
	writePlaylistPtr := flag.Bool("write-playlist", false, "Write a playlist from the given urls to playlists/ and exit")

	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}
	cfg.App.BuildVersion = buildVersion

	// Flags only override the config when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "playlist":
			cfg.Playlist = *playlistPtr
		case "player":
			cfg.Player.Kind = *playerPtr
		case "welcome-delay":
			cfg.Carousel.WelcomeDelay = *welcomeDelayPtr
		case "autoplay-delay":
			cfg.Carousel.AutoplayDelay = *autoplayDelayPtr
		case "countdown":
			cfg.Countdown = countdown.Settings{Input: countdown.Seconds{Seconds: *countdownPtr}}
		case "infinite":
			cfg.Carousel.Infinite = *infinitePtr
		case "stats":
			cfg.App.ShowStats = *statsPtr
		case "log-level":
			cfg.Log.Level = *logLevelPtr
		}
	})
	if urls := flag.Args(); len(urls) > 0 {
		cfg.Videos = urls
		cfg.Playlist = ""
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	slog.SetDefault(logger)

	if *writePlaylistPtr {
		p, err := playlist.FromURLs(cfg.Welcome.Title, cfg.Videos)
		if err != nil {
			log.Fatalf("[-] Playlist error: %v", err)
		}
		path := playlist.GeneratePath(engine.DefaultPlaylistDir)
		if err := playlist.Write(p, path); err != nil {
			log.Fatalf("[-] Playlist error: %v", err)
		}
		fmt.Printf("[+] Playlist written: %s\n", path)
		return
	}

	if cfg.Player.Kind == config.PlayerFFplay {
		bin := cfg.Player.Binary
		if bin == "" {
			bin = "ffplay"
		}
		if _, err := system.LookupBinary(bin); err != nil {
			log.Fatalf("[-] %v. Install ffmpeg or use -player timed", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting carousel", "version", buildVersion)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hostCtx, cancel := context.WithTimeout(gctx, 2*time.Second)
		defer cancel()
		logger.Info("Host", "info", system.Describe(hostCtx).String())
		return nil
	})
	g.Go(func() error {
		return engine.NewProject(cfg, logger).Run(gctx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("[-] Carousel error: %v", err)
	}

	fmt.Println("[+] Carousel stopped")
}

func newLogger(lc config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", lc.Level)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(lc.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", lc.Format)
	}
}
