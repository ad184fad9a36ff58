package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlordjames/green-lib/errors"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "greensync-test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("content"))
		case "/error":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(WithHTTPClient(srv.Client()), WithUserAgent("greensync-test"))

	t.Run("ok", func(t *testing.T) {
		body, err := src.Fetch(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "content", string(body))
	})

	for _, path := range []string{"/missing", "/error"} {
		t.Run("status "+path, func(t *testing.T) {
			_, err := src.Fetch(context.Background(), srv.URL+path)
			require.Error(t, err)
			assert.Equal(t, errors.CodeProtocol, errors.GetCode(err))
			assert.False(t, errors.IsRetryable(err))
		})
	}
}

func TestHTTPSource_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource().Fetch(context.Background(), url+"/gone")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestHTTPSource_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPSource().Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
}

func TestRouter(t *testing.T) {
	var got string
	r := NewRouter().Handle("HTTPS", SourceFunc(func(_ context.Context, rawURL string) ([]byte, error) {
		got = rawURL
		return []byte("x"), nil
	}))

	body, err := r.Fetch(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "x", string(body))
	assert.Equal(t, "https://example.com/a", got)

	_, err = r.Fetch(context.Background(), "ftp://example.com/a")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = r.Fetch(context.Background(), "://bad")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 5, p.MaxRetries)
	for retry, want := range map[int]int64{1: 250, 2: 500, 3: 750, 4: 1000, 5: 1250} {
		assert.Equal(t, want, p.Delay(retry).Milliseconds())
	}
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
