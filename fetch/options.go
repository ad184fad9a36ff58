package fetch

import (
	"io"
	"log/slog"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/metrics"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetryPolicy sets the retry policy for transport failures.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(f *Fetcher) {
		if p.MaxRetries < 0 {
			p.MaxRetries = 0
		}
		f.retry = p
	}
}

// WithLogger sets a custom logger for the fetcher.
// If not provided, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics records fetch attempts and durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithHasher hashes downloaded content on h instead of the calling goroutine.
func WithHasher(h *digest.Hasher) Option {
	return func(f *Fetcher) {
		f.hasher = h
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
