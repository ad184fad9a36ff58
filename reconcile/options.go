package reconcile

import (
	"io"
	"log/slog"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/fetch"
	"github.com/urlordjames/green-lib/fs"
	"github.com/urlordjames/green-lib/metrics"
	"github.com/urlordjames/green-lib/progress"
)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithFilesystem sets the filesystem runs operate on.
// Defaults to the OS filesystem; relative roots are then resolved against the
// working directory.
func WithFilesystem(fsys fs.Filesystem) Option {
	return func(r *Reconciler) {
		r.fs = fsys
	}
}

// WithFetcher sets the fetcher used for fetch tasks. When unset, a fetcher
// over http, https and s3 sources is built from the other options.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(r *Reconciler) {
		r.fetcher = f
	}
}

// WithHasher sets the hasher used for local files. The caller keeps
// ownership and must close it.
func WithHasher(h *digest.Hasher) Option {
	return func(r *Reconciler) {
		r.hasher = h
	}
}

// WithLogger sets a custom logger for the reconciler.
// If not provided, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records run and entry metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithMaxConcurrency bounds the number of fetch tasks running at once.
// Zero, the default, runs every task as soon as it is spawned.
func WithMaxConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n >= 0 {
			r.maxConcurrency = n
		}
	}
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	progress chan<- progress.Event
}

// WithProgress sends progress events for the run on ch: one Total carrying
// the number of fetch tasks and one Tick per completed task, in no particular
// order. Sends block until ch accepts them or the run is canceled.
func WithProgress(ch chan<- progress.Event) RunOption {
	return func(c *runConfig) {
		c.progress = ch
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
