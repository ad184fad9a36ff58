package digest

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/urlordjames/green-lib/errors"
)

type result struct {
	sum string
	err error
}

type job struct {
	ctx  context.Context
	r    io.Reader
	done chan result
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Hasher computes digests on a fixed set of worker goroutines.
// Callers block until their own result is ready; the pool only bounds how many
// hashes run at once. A Hasher is safe for concurrent use.
type Hasher struct {
	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewHasher starts a Hasher with the given number of workers.
// A non-positive count uses runtime.NumCPU().
func NewHasher(workers int) *Hasher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	h := &Hasher{
		jobs: make(chan job),
		quit: make(chan struct{}),
	}
	h.wg.Add(workers)
	for range workers {
		go h.work()
	}
	return h
}

func (h *Hasher) work() {
	defer h.wg.Done()
	for {
		select {
		case j := <-h.jobs:
			sum, err := FromReader(&contextReader{ctx: j.ctx, r: j.r})
			j.done <- result{sum: sum, err: err}
		case <-h.quit:
			return
		}
	}
}

// Sum hashes everything read from r on a worker and waits for the result.
// Sum does not return while the worker is still reading r: when ctx is done
// the worker stops before its next read and Sum waits for it, so r may be
// closed as soon as Sum returns. A Read that blocks delays that return.
func (h *Hasher) Sum(ctx context.Context, r io.Reader) (string, error) {
	j := job{ctx: ctx, r: r, done: make(chan result, 1)}

	select {
	case h.jobs <- j:
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), errors.CodeCanceled, "hash aborted")
	case <-h.quit:
		return "", errors.New(errors.CodeInternal, "hasher is closed")
	}

	res := <-j.done
	if err := ctx.Err(); err != nil && res.err != nil {
		return "", errors.Wrap(err, errors.CodeCanceled, "hash aborted")
	}
	return res.sum, res.err
}

// SumBytes hashes b on a worker and waits for the result.
func (h *Hasher) SumBytes(ctx context.Context, b []byte) (string, error) {
	return h.Sum(ctx, bytes.NewReader(b))
}

// Close stops the workers. Jobs already accepted finish first.
func (h *Hasher) Close() {
	h.once.Do(func() {
		close(h.quit)
	})
	h.wg.Wait()
}
