package fetch

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fs/billy"
	"github.com/urlordjames/green-lib/progress"
)

// recordSleeps replaces f.sleep with a recorder that never waits.
func recordSleeps(f *Fetcher) *[]time.Duration {
	var delays []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return &delays
}

func newTask(t *testing.T, fsys *billy.FS, path, sum string) *Task {
	t.Helper()
	task, err := NewTask(fsys, path, "https://example.com/"+path, sum)
	require.NoError(t, err)
	return task
}

func TestFetcher_Run(t *testing.T) {
	ctx := context.Background()
	payload := []byte("hello world")
	sum := digest.FromBytes(payload)

	t.Run("writes verified content and ticks", func(t *testing.T) {
		fsys := billy.NewInMemoryFS()
		f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
			return payload, nil
		}))

		events := make(chan progress.Event, 1)
		task := newTask(t, fsys, "a.txt", sum)
		require.NoError(t, f.Run(ctx, task, progress.NewReporter(events)))

		got, err := fsys.ReadFile("a.txt")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, progress.Tick(), <-events)
	})

	t.Run("nil reporter", func(t *testing.T) {
		fsys := billy.NewInMemoryFS()
		hasher := digest.NewHasher(1)
		defer hasher.Close()
		f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
			return payload, nil
		}), WithHasher(hasher))

		require.NoError(t, f.Run(ctx, newTask(t, fsys, "a.txt", sum), nil))
	})

	t.Run("retries transport failures then succeeds", func(t *testing.T) {
		fsys := billy.NewInMemoryFS()
		var attempts int
		f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New(errors.CodeNetwork, "connection refused")
			}
			return payload, nil
		}))
		delays := recordSleeps(f)

		require.NoError(t, f.Run(ctx, newTask(t, fsys, "a.txt", sum), nil))
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}, *delays)
	})
}

func TestFetcher_RetryBound(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	var attempts int
	f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
		attempts++
		return nil, errors.New(errors.CodeNetwork, "connection refused")
	}))
	delays := recordSleeps(f)

	events := make(chan progress.Event, 1)
	err := f.Run(context.Background(), newTask(t, fsys, "a.txt", digest.FromBytes(nil)), progress.NewReporter(events))
	require.Error(t, err)

	assert.Equal(t, errors.CodeRetryExhausted, errors.GetCode(err))
	assert.True(t, errors.HasCode(err, errors.CodeNetwork))
	assert.Equal(t, 6, attempts)
	assert.Equal(t, []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		750 * time.Millisecond,
		1000 * time.Millisecond,
		1250 * time.Millisecond,
	}, *delays)

	exists, existsErr := fsys.Exists("a.txt")
	require.NoError(t, existsErr)
	assert.False(t, exists, "failed task must not leave its destination behind")
	assert.Empty(t, events)
}

func TestFetcher_CustomRetryPolicy(t *testing.T) {
	var attempts int
	f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
		attempts++
		return nil, errors.New(errors.CodeTimeout, "dial timeout")
	}), WithRetryPolicy(RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}))
	delays := recordSleeps(f)

	err := f.Run(context.Background(), newTask(t, billy.NewInMemoryFS(), "a.txt", digest.FromBytes(nil)), nil)
	assert.Equal(t, errors.CodeRetryExhausted, errors.GetCode(err))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, *delays)
}

func TestFetcher_FatalFailures(t *testing.T) {
	tests := []struct {
		name     string
		fetchErr error
		wantCode errors.ErrorCode
	}{
		{"protocol error", errors.New(errors.CodeProtocol, "bad response"), errors.CodeProtocol},
		{"unclassified error", stderrors.New("boom"), errors.CodeProtocol},
		{"invalid input", errors.New(errors.CodeInvalidInput, "bad url"), errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := billy.NewInMemoryFS()
			var attempts int
			f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
				attempts++
				return nil, tt.fetchErr
			}))
			delays := recordSleeps(f)

			err := f.Run(context.Background(), newTask(t, fsys, "a.txt", digest.FromBytes(nil)), nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
			assert.Equal(t, 1, attempts)
			assert.Empty(t, *delays)

			var pe errors.PlatformError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "a.txt", pe.Context()["path"])
		})
	}
}

func TestFetcher_Integrity(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	expected := digest.FromBytes([]byte("expected"))
	f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
		return []byte("tampered content"), nil
	}))

	events := make(chan progress.Event, 1)
	err := f.Run(context.Background(), newTask(t, fsys, "mods/c.jar", expected), progress.NewReporter(events))
	require.Error(t, err)
	assert.Equal(t, errors.CodeIntegrity, errors.GetCode(err))

	var mismatch *digest.MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, expected, mismatch.Expected)

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	fields := pe.Context()
	assert.Equal(t, expected, fields["expected"])
	assert.Equal(t, digest.FromBytes([]byte("tampered content")), fields["actual"])
	assert.Equal(t, "https://example.com/mods/c.jar", fields["url"])
	assert.Equal(t, "text/plain; charset=utf-8", fields["content_type"])

	exists, existsErr := fsys.Exists("mods/c.jar")
	require.NoError(t, existsErr)
	assert.False(t, exists)
	assert.Empty(t, events)
}

func TestFetcher_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := NewFetcher(SourceFunc(func(context.Context, string) ([]byte, error) {
		cancel()
		return nil, errors.New(errors.CodeNetwork, "connection reset")
	}))

	err := f.Run(ctx, newTask(t, billy.NewInMemoryFS(), "a.txt", digest.FromBytes(nil)), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_HTTP(t *testing.T) {
	payload := []byte("jar bytes")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := NewFetcher(NewHTTPSource(WithHTTPClient(srv.Client())))
	recordSleeps(f)
	fsys := billy.NewInMemoryFS()

	t.Run("ok", func(t *testing.T) {
		task, err := NewTask(fsys, "c.jar", srv.URL+"/c.jar", digest.FromBytes(payload))
		require.NoError(t, err)
		require.NoError(t, f.Run(context.Background(), task, nil))

		got, err := fsys.ReadFile("c.jar")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("non-2xx is fatal without retry", func(t *testing.T) {
		hits.Store(0)
		task, err := NewTask(fsys, "missing.jar", srv.URL+"/missing", digest.FromBytes(payload))
		require.NoError(t, err)

		err = f.Run(context.Background(), task, nil)
		require.Error(t, err)
		assert.Equal(t, errors.CodeProtocol, errors.GetCode(err))
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestNewTask_CreateFailure(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("taken", 0o755))

	_, err := NewTask(fsys, "taken", "https://example.com/x", digest.FromBytes(nil))
	require.Error(t, err)
	assert.Equal(t, errors.CodeFilesystem, errors.GetCode(err))
}
