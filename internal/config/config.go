package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/videocarousel/internal/carousel"
	"github.com/ivlev/videocarousel/internal/countdown"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	App       AppConfig          `yaml:"app"`
	Log       LogConfig          `yaml:"log"`
	Carousel  CarouselConfig     `yaml:"carousel"`
	Welcome   WelcomeConfig      `yaml:"welcome"`
	Player    PlayerConfig       `yaml:"player"`
	Countdown countdown.Settings `yaml:"countdown"`
	Playlist  string             `yaml:"playlist,omitempty"`
	Videos    []string           `yaml:"videos,omitempty"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	ShowStats bool   `yaml:"show_stats"`
	// BuildVersion is set from ldflags, never from the file.
	BuildVersion string `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CarouselConfig struct {
	WelcomeDelay  time.Duration `yaml:"welcome_delay"`
	AutoplayDelay time.Duration `yaml:"autoplay_delay"`
	Infinite      bool          `yaml:"infinite"`
}

type WelcomeConfig struct {
	Title      string   `yaml:"title"`
	Lines      []string `yaml:"lines,omitempty"`
	Link       string   `yaml:"link,omitempty"`
	Background string   `yaml:"background,omitempty"`
	Output     string   `yaml:"output,omitempty"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	DPI        int      `yaml:"dpi"`
}

type PlayerConfig struct {
	Kind       string        `yaml:"kind"`
	Binary     string        `yaml:"binary,omitempty"`
	Probe      string        `yaml:"probe,omitempty"`
	Fullscreen bool          `yaml:"fullscreen"`
	Fallback   time.Duration `yaml:"fallback_duration"`
	Workers    int           `yaml:"probe_workers"`
}

const (
	PlayerFFplay = "ffplay"
	PlayerTimed  = "timed"
)

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "video-carousel",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Carousel: CarouselConfig{
			WelcomeDelay:  carousel.DefaultWelcomeDelay,
			AutoplayDelay: carousel.DefaultAutoplayDelay,
			Infinite:      true,
		},
		Welcome: WelcomeConfig{
			Title:  "Welcome",
			Lines:  []string{"The first video starts in a few seconds"},
			Width:  1280,
			Height: 720,
			DPI:    150,
		},
		Player: PlayerConfig{
			Kind:     PlayerFFplay,
			Fallback: 30 * time.Second,
			Workers:  4,
		},
		Countdown: countdown.Settings{Input: countdown.Range{CountStart: 10}},
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Carousel.WelcomeDelay < 0 || c.Carousel.AutoplayDelay < 0 {
		return fmt.Errorf("%w: carousel delays must not be negative", ErrInvalid)
	}
	switch c.Player.Kind {
	case PlayerFFplay, PlayerTimed:
	default:
		return fmt.Errorf("%w: unknown player kind %q", ErrInvalid, c.Player.Kind)
	}
	if c.Player.Fallback < 0 {
		return fmt.Errorf("%w: negative fallback duration", ErrInvalid)
	}
	if c.Playlist != "" && len(c.Videos) > 0 {
		return fmt.Errorf("%w: set either playlist or videos, not both", ErrInvalid)
	}
	if c.Welcome.Output != "" && (c.Welcome.Width <= 0 || c.Welcome.Height <= 0) {
		return fmt.Errorf("%w: welcome card needs a size", ErrInvalid)
	}
	if _, err := c.Countdown.Config(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
