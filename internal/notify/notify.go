// Package notify posts on-screen notices for the carousel.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Notice is one notification. A zero Duration keeps it open until it is
// replaced.
type Notice struct {
	Message     string
	Description string
	Duration    time.Duration
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

var (
	_ Notifier = (*Log)(nil)
	_ Notifier = (*Multi)(nil)
)

// Log writes notices to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("module", "notify")}
}

func (l *Log) Notify(ctx context.Context, n Notice) error {
	attrs := []any{"message", n.Message, "description", n.Description}
	if n.Duration > 0 {
		attrs = append(attrs, "duration", n.Duration)
	} else {
		attrs = append(attrs, "sticky", true)
	}
	l.logger.InfoContext(ctx, "Notice", attrs...)
	return nil
}

// Multi fans a notice out to every registered notifier.
type Multi struct {
	notifiers []Notifier
}

func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Notify(ctx context.Context, n Notice) error {
	for _, nt := range m.notifiers {
		if err := nt.Notify(ctx, n); err != nil {
			slog.Error("multi-notifier: notice failed", "message", n.Message, "error", err)
		}
	}
	return nil
}
