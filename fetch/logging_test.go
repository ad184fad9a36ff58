package fetch

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fs/billy"
)

type logEntry struct {
	level   string
	msg     string
	attempt int64
}

type testLogHandler struct {
	mu   sync.Mutex
	logs *[]logEntry
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := logEntry{
		level: r.Level.String(),
		msg:   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "attempt" {
			entry.attempt = a.Value.Int64()
		}
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.logs = append(*h.logs, entry)
	return nil
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *testLogHandler) WithGroup(string) slog.Handler {
	return h
}

func TestFetcher_LogsRetries(t *testing.T) {
	var logs []logEntry
	logger := slog.New(&testLogHandler{logs: &logs})

	attempts := 0
	f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
		attempts++
		if attempts <= 2 {
			return nil, errors.New(errors.CodeNetwork, "connection refused")
		}
		return []byte("ok"), nil
	}), WithLogger(logger))
	recordSleeps(f)

	task, err := NewTask(billy.NewInMemoryFS(), "a.txt", "https://example.com/a.txt", digest.FromBytes([]byte("ok")))
	require.NoError(t, err)
	require.NoError(t, f.Run(context.Background(), task, nil))

	var warns []logEntry
	for _, e := range logs {
		if e.level == slog.LevelWarn.String() {
			warns = append(warns, e)
		}
	}
	require.Len(t, warns, 2)
	assert.Equal(t, "fetch failed, retrying", warns[0].msg)
	assert.Equal(t, int64(1), warns[0].attempt)
	assert.Equal(t, int64(2), warns[1].attempt)
	assert.Equal(t, "DEBUG", logs[len(logs)-1].level)
	assert.Equal(t, "fetched file", logs[len(logs)-1].msg)
}
