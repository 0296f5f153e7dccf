package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	notices []Notice
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notice) error {
	r.notices = append(r.notices, n)
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	first := &recordingNotifier{err: errors.New("display gone")}
	second := &recordingNotifier{}
	m := NewMulti(first, second)

	n := Notice{Message: "Video", Description: "Video: https://example.com/a"}
	err := m.Notify(context.Background(), n)

	assert.NoError(t, err)
	assert.Equal(t, []Notice{n}, first.notices)
	assert.Equal(t, []Notice{n}, second.notices, "a failing notifier must not block the rest")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	err := l.Notify(context.Background(), Notice{Message: "Video", Description: "Video: x"})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=Notice")
	assert.Contains(t, buf.String(), `description="Video: x"`)
	assert.Contains(t, buf.String(), "sticky=true")
	assert.Contains(t, buf.String(), "module=notify")
}
