package playlist

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const Version = "1.0"

var ErrEmpty = errors.New("playlist has no video slides")

type Kind string

const (
	KindWelcome Kind = "welcome"
	KindVideo   Kind = "video"
)

// Playlist is the ordered list of carousel slides
type Playlist struct {
	Version string  `yaml:"version"`
	Slides  []Slide `yaml:"slides"`
}

// Slide is a single carousel entry
type Slide struct {
	ID       int           `yaml:"id"`
	Kind     Kind          `yaml:"kind"`
	URL      string        `yaml:"url,omitempty"`
	Title    string        `yaml:"title,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"` // Known playback length, 0 if unknown
}

// FromURLs builds a playlist with a welcome slide followed by one video
// slide per url
func FromURLs(welcomeTitle string, urls []string) (*Playlist, error) {
	if len(urls) == 0 {
		return nil, ErrEmpty
	}

	slides := []Slide{{ID: 1, Kind: KindWelcome, Title: welcomeTitle}}
	for i, u := range urls {
		slides = append(slides, Slide{
			ID:   i + 2,
			Kind: KindVideo,
			URL:  strings.TrimSpace(u),
		})
	}

	p := &Playlist{Version: Version, Slides: slides}
	return p, p.Validate()
}

// Validate checks slide kinds, urls and that the playlist has videos
func (p *Playlist) Validate() error {
	videos := 0
	for i, s := range p.Slides {
		switch s.Kind {
		case KindWelcome:
			if i != 0 {
				return fmt.Errorf("slide %d: welcome slide must come first", s.ID)
			}
		case KindVideo:
			if s.URL == "" {
				return fmt.Errorf("slide %d: video slide without url", s.ID)
			}
			if s.Duration < 0 {
				return fmt.Errorf("slide %d: negative duration", s.ID)
			}
			videos++
		default:
			return fmt.Errorf("slide %d: unknown kind %q", s.ID, s.Kind)
		}
	}
	if videos == 0 {
		return ErrEmpty
	}
	return nil
}

// URLs returns the urls of the video slides in order
func (p *Playlist) URLs() []string {
	var urls []string
	for _, s := range p.Slides {
		if s.Kind == KindVideo {
			urls = append(urls, s.URL)
		}
	}
	return urls
}

// Durations returns the known durations keyed by url
func (p *Playlist) Durations() map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, s := range p.Slides {
		if s.Kind == KindVideo && s.Duration > 0 {
			out[s.URL] = s.Duration
		}
	}
	return out
}
