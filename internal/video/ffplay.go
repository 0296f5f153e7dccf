package video

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// FFplayPlayer runs ffplay for each video. The process exiting on its
// own counts as the end of the video.
type FFplayPlayer struct {
	Binary     string
	Fullscreen bool
	ExtraArgs  []string

	onEnded EndedFunc
	logger  *slog.Logger

	mu     sync.Mutex
	url    string
	cancel context.CancelFunc
	gen    uint64
}

func NewFFplayPlayer(binary string, onEnded EndedFunc, logger *slog.Logger) *FFplayPlayer {
	if binary == "" {
		binary = "ffplay"
	}
	if onEnded == nil {
		onEnded = func(string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFplayPlayer{
		Binary:  binary,
		onEnded: onEnded,
		logger:  logger.With("module", "video"),
	}
}

func (p *FFplayPlayer) Load(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.url = url
	return nil
}

func (p *FFplayPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.url == "" {
		return ErrNotLoaded
	}
	if p.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, p.Binary, p.buildArgs(p.url)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}
	p.cancel = cancel
	gen := p.gen
	url := p.url
	p.logger.Info("Playback started", "url", url, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()

		p.mu.Lock()
		if gen != p.gen {
			p.mu.Unlock()
			return
		}
		p.cancel = nil
		p.mu.Unlock()
		cancel()

		if err != nil {
			p.logger.Warn("Player exited with error", "url", url, "error", err, "output", strings.TrimSpace(out.String()))
		}
		p.onEnded(url)
	}()
	return nil
}

func (p *FFplayPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *FFplayPlayer) stopLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *FFplayPlayer) buildArgs(url string) []string {
	args := []string{"-autoexit", "-loglevel", "error", "-window_title", url}
	if p.Fullscreen {
		args = append(args, "-fs")
	}
	args = append(args, p.ExtraArgs...)
	return append(args, url)
}
