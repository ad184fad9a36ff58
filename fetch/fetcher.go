package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/metrics"
	"github.com/urlordjames/green-lib/progress"
)

// Fetcher downloads, verifies and writes remote files.
type Fetcher struct {
	source  Source
	retry   RetryPolicy
	hasher  *digest.Hasher
	logger  *slog.Logger
	metrics *metrics.Metrics

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher reading from src.
func NewFetcher(src Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: src,
		retry:  DefaultRetryPolicy(),
		logger: discardLogger(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RetryPolicy returns the policy in effect.
func (f *Fetcher) RetryPolicy() RetryPolicy {
	return f.retry
}

// Run downloads task.URL, verifies it against task.Digest, writes it to the
// destination and sends a Tick on reporter. On any failure the destination is
// removed and no Tick is sent.
func (f *Fetcher) Run(ctx context.Context, task *Task, reporter *progress.Reporter) (err error) {
	start := time.Now()
	f.metrics.TaskStarted()
	defer f.metrics.TaskFinished()

	committed := false
	defer func() {
		if err == nil || committed {
			return
		}
		status := metrics.StatusFailed
		if errors.HasCode(err, errors.CodeIntegrity) {
			status = metrics.StatusIntegrity
		}
		f.metrics.RecordFetchAttempt(status)
		if rmErr := task.discard(); rmErr != nil {
			f.logger.Warn("failed to remove destination after fetch failure",
				"path", task.Path, "error", rmErr)
		}
	}()

	data, err := f.download(ctx, task)
	if err != nil {
		return err
	}
	if err := f.verify(ctx, task, data); err != nil {
		return err
	}
	if err := task.commit(data); err != nil {
		return err
	}
	committed = true

	f.metrics.RecordFetchAttempt(metrics.StatusSuccess)
	f.metrics.RecordFetch(len(data), time.Since(start))
	f.logger.Debug("fetched file", "path", task.Path, "url", task.URL, "bytes", len(data))

	if err := reporter.Tick(ctx); err != nil {
		return errors.WrapWithContext(err, errors.CodeCanceled, "report progress",
			map[string]interface{}{"path": task.Path})
	}
	return nil
}

// download fetches task.URL, retrying retryable failures per f.retry.
func (f *Fetcher) download(ctx context.Context, task *Task) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		data, err := f.source.Fetch(ctx, task.URL)
		if err == nil {
			return data, nil
		}

		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeCanceled, "fetch aborted")
		}

		fields := map[string]interface{}{"path": task.Path, "url": task.URL, "attempt": attempt}
		if !errors.IsRetryable(err) {
			code := errors.GetCode(err)
			if code == errors.CodeUnknown {
				code = errors.CodeProtocol
			}
			return nil, errors.WrapWithContext(err, code, "fetch failed", fields)
		}

		if attempt > f.retry.MaxRetries {
			return nil, errors.WrapWithContext(err, errors.CodeRetryExhausted, "fetch retries exhausted", fields)
		}

		delay := f.retry.Delay(attempt)
		f.metrics.RecordFetchAttempt(metrics.StatusRetried)
		f.logger.Warn("fetch failed, retrying",
			"path", task.Path, "url", task.URL, "attempt", attempt, "delay", delay, "error", err)

		if err := f.sleep(ctx, delay); err != nil {
			return nil, errors.Wrap(err, errors.CodeCanceled, "fetch aborted")
		}
	}
}

// verify checks data against task.Digest.
func (f *Fetcher) verify(ctx context.Context, task *Task, data []byte) error {
	var (
		actual string
		err    error
	)
	if f.hasher != nil {
		actual, err = f.hasher.SumBytes(ctx, data)
		if err != nil {
			return err
		}
	} else {
		actual = digest.FromBytes(data)
	}

	if digest.Equal(actual, task.Digest) {
		return nil
	}

	return errors.WrapWithContext(
		&digest.MismatchError{Expected: task.Digest, Actual: actual},
		errors.CodeIntegrity, "downloaded content does not match digest",
		map[string]interface{}{
			"path":         task.Path,
			"url":          task.URL,
			"expected":     task.Digest,
			"actual":       actual,
			"size":         len(data),
			"content_type": mimetype.Detect(data).String(),
		},
	)
}
