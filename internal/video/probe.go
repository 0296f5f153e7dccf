package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Prober reads media durations with ffprobe.
type Prober struct {
	Binary string
	Run    Runner
}

func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary, Run: execRunner}
}

func (p *Prober) Probe(ctx context.Context, url string) (time.Duration, error) {
	out, err := p.Run(ctx, p.Binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		url,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", url, err)
	}
	return parseDuration(string(out))
}

// ProbeAll probes urls with at most workers ffprobe processes at a time.
// Durations that could be read are returned even when others failed.
func (p *Prober) ProbeAll(ctx context.Context, urls []string, workers int) (map[string]time.Duration, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu        sync.Mutex
		durations = make(map[string]time.Duration, len(urls))
		errs      []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, url := range urls {
		url := url
		g.Go(func() error {
			d, err := p.Probe(gctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			durations[url] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return durations, err
	}
	if err := ctx.Err(); err != nil {
		return durations, err
	}
	return durations, errors.Join(errs...)
}

func parseDuration(out string) (time.Duration, error) {
	s := strings.TrimSpace(out)
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
