package countdown

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultIntervalMs = 1000
	DefaultCountStop  = 0
)

var ErrInvalidConfig = errors.New("invalid countdown config")

// Config is the normalized countdown configuration. It is fixed once the
// countdown is built.
type Config struct {
	CountStart  int
	Interval    time.Duration
	IsIncrement bool
	CountStop   int
}

// Input is one of the accepted configuration shapes: Seconds or Range.
type Input interface {
	normalize() (Config, error)
}

// Seconds is the older shape. It counts from Seconds towards zero unless
// IsIncrement is set; Interval is in milliseconds.
type Seconds struct {
	Seconds     int   `yaml:"seconds"`
	Interval    *int  `yaml:"interval,omitempty"`
	IsIncrement *bool `yaml:"isIncrement,omitempty"`
}

// Range counts from CountStart towards CountStop.
type Range struct {
	CountStart  int   `yaml:"countStart"`
	IntervalMs  *int  `yaml:"intervalMs,omitempty"`
	IsIncrement *bool `yaml:"isIncrement,omitempty"`
	CountStop   *int  `yaml:"countStop,omitempty"`
}

// Int and Bool build the optional fields of Seconds and Range.
func Int(v int) *int { return &v }

func Bool(v bool) *bool { return &v }

func (s Seconds) normalize() (Config, error) {
	return build(s.Seconds, s.Interval, s.IsIncrement, nil)
}

func (r Range) normalize() (Config, error) {
	return build(r.CountStart, r.IntervalMs, r.IsIncrement, r.CountStop)
}

// Normalize converts any accepted shape into a Config.
func Normalize(in Input) (Config, error) {
	switch v := in.(type) {
	case nil:
		return Config{}, fmt.Errorf("%w: no configuration given", ErrInvalidConfig)
	case *Seconds:
		if v == nil {
			return Config{}, fmt.Errorf("%w: nil seconds configuration", ErrInvalidConfig)
		}
		return v.normalize()
	case *Range:
		if v == nil {
			return Config{}, fmt.Errorf("%w: nil range configuration", ErrInvalidConfig)
		}
		return v.normalize()
	}
	return in.normalize()
}

func build(start int, intervalMs *int, isIncrement *bool, stop *int) (Config, error) {
	cfg := Config{
		CountStart: start,
		Interval:   DefaultIntervalMs * time.Millisecond,
		CountStop:  DefaultCountStop,
	}
	if intervalMs != nil {
		if *intervalMs < 0 {
			return Config{}, fmt.Errorf("%w: negative interval %dms", ErrInvalidConfig, *intervalMs)
		}
		cfg.Interval = time.Duration(*intervalMs) * time.Millisecond
	}
	if isIncrement != nil {
		cfg.IsIncrement = *isIncrement
	}
	if stop != nil {
		cfg.CountStop = *stop
	}
	return cfg, nil
}

// Reachable reports whether stepping from CountStart in the configured
// direction ever meets CountStop.
func (c Config) Reachable() bool {
	if c.IsIncrement {
		return c.CountStart <= c.CountStop
	}
	return c.CountStart >= c.CountStop
}

var (
	secondsKeys = map[string]bool{"seconds": true, "interval": true, "isIncrement": true}
	rangeKeys   = map[string]bool{"countStart": true, "intervalMs": true, "isIncrement": true, "countStop": true}
)

// Settings carries a countdown Input through YAML. The shape is chosen by
// the presence of the "seconds" key; mappings that match neither shape
// are rejected.
type Settings struct {
	Input Input
}

func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidConfig, node.Line)
	}

	keys := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = true
	}

	switch {
	case keys["seconds"]:
		if err := checkKeys(keys, secondsKeys); err != nil {
			return err
		}
		var v Seconds
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		s.Input = v
	case keys["countStart"]:
		if err := checkKeys(keys, rangeKeys); err != nil {
			return err
		}
		var v Range
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		s.Input = v
	default:
		return fmt.Errorf("%w: line %d: need either \"seconds\" or \"countStart\"", ErrInvalidConfig, node.Line)
	}
	return nil
}

func (s Settings) MarshalYAML() (interface{}, error) {
	return s.Input, nil
}

// Config normalizes the carried input.
func (s Settings) Config() (Config, error) {
	return Normalize(s.Input)
}

func checkKeys(got, allowed map[string]bool) error {
	var unknown []string
	for k := range got {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(unknown, ", "))
}
