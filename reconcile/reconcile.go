package reconcile

import (
	"context"
	stderrors "errors"
	iofs "io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fetch"
	"github.com/urlordjames/green-lib/fs"
	"github.com/urlordjames/green-lib/fs/billy"
	"github.com/urlordjames/green-lib/manifest"
	"github.com/urlordjames/green-lib/metrics"
	"github.com/urlordjames/green-lib/progress"
)

// Reconciler runs reconciliations. It is safe for concurrent use, but
// concurrent runs against the same directory are not supported.
type Reconciler struct {
	fs             fs.Filesystem
	fetcher        *fetch.Fetcher
	hasher         *digest.Hasher
	ownsHasher     bool
	osRoot         bool
	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxConcurrency int
}

// Result summarizes a successful run.
type Result struct {
	// Fetched is the number of files downloaded.
	Fetched int
	// Kept is the number of local files whose content already matched.
	Kept int
	// Deleted is the number of local files and directories removed.
	Deleted int
	// Duration is the wall time of the run.
	Duration time.Duration
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.fs == nil {
		r.fs = billy.NewOSFS("/")
		r.osRoot = true
	}
	if r.hasher == nil {
		r.hasher = digest.NewHasher(0)
		r.ownsHasher = true
	}
	if r.fetcher == nil {
		src := fetch.DefaultRouter(fetch.NewHTTPSource(), fetch.NewS3Source())
		r.fetcher = fetch.NewFetcher(src,
			fetch.WithHasher(r.hasher),
			fetch.WithLogger(r.logger),
			fetch.WithMetrics(r.metrics),
		)
	}
	return r
}

// Close releases the hasher if the Reconciler created it.
func (r *Reconciler) Close() {
	if r.ownsHasher {
		r.hasher.Close()
	}
}

// runState is shared by one run's walk and its fetch tasks.
type runState struct {
	// isRoot is set only for the first reconcile call.
	isRoot   bool
	group    *errgroup.Group
	reporter *progress.Reporter

	// Counters below are only touched by the walk.
	spawned int
	kept    int
	deleted int
}

// Run reconciles the directory at root against dir. root must exist and be
// a directory. Run returns once every fetch task has finished; any failure
// aborts the remaining work and is returned.
func (r *Reconciler) Run(ctx context.Context, root string, dir *manifest.Directory, opts ...RunOption) (*Result, error) {
	start := time.Now()
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := r.run(ctx, root, dir, cfg)
	duration := time.Since(start)
	if err != nil {
		r.metrics.RecordRun(metrics.ResultFailure, duration)
		r.logger.Error("reconciliation failed", "path", root, "error", err)
		return nil, err
	}

	res.Duration = duration
	r.metrics.RecordRun(metrics.ResultSuccess, duration)
	r.logger.Info("reconciliation finished",
		"path", root,
		"fetched", res.Fetched,
		"kept", res.Kept,
		"deleted", res.Deleted,
		"duration", duration,
	)
	return res, nil
}

func (r *Reconciler) run(ctx context.Context, root string, dir *manifest.Directory, cfg runConfig) (*Result, error) {
	if dir == nil {
		return nil, errors.New(errors.CodeInvalidInput, "manifest is nil")
	}
	if err := dir.Validate(); err != nil {
		return nil, err
	}
	root, err := r.resolveRoot(root)
	if err != nil {
		return nil, err
	}
	if err := r.checkRoot(root); err != nil {
		return nil, err
	}

	r.logger.Info("reconciliation started", "path", root)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}

	state := &runState{
		isRoot:   true,
		group:    g,
		reporter: progress.NewReporter(cfg.progress),
	}

	if err := r.reconcile(gctx, root, dir, state); err != nil {
		cancel()
		taskErr := g.Wait()
		// A walk stopped by cancellation is reporting a task failure.
		if taskErr != nil && errors.HasCode(err, errors.CodeCanceled) {
			return nil, taskErr
		}
		return nil, err
	}

	r.logger.Debug("tree walk complete", "count", state.spawned)
	totalErr := state.reporter.Total(gctx, state.spawned)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if totalErr != nil {
		return nil, errors.Wrap(totalErr, errors.CodeCanceled, "report progress")
	}

	return &Result{
		Fetched: state.spawned,
		Kept:    state.kept,
		Deleted: state.deleted,
	}, nil
}

// resolveRoot makes root absolute against the working directory when runs
// address the OS filesystem from "/".
func (r *Reconciler) resolveRoot(root string) (string, error) {
	if !r.osRoot {
		return root, nil
	}
	abs, err := fs.GetAbs(root)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeInvalidInput, "resolve root directory",
			map[string]interface{}{"path": root})
	}
	return abs, nil
}

func (r *Reconciler) checkRoot(root string) error {
	info, err := r.fs.Stat(root)
	switch {
	case stderrors.Is(err, iofs.ErrNotExist):
		return errors.WrapWithContext(err, errors.CodeNotFound, "root directory does not exist",
			map[string]interface{}{"path": root})
	case err != nil:
		return errors.WrapWithContext(err, errors.CodeFilesystem, "stat root directory",
			map[string]interface{}{"path": root})
	case !info.IsDir():
		return errors.WrapWithContext(nil, errors.CodeInvalidInput, "root is not a directory",
			map[string]interface{}{"path": root})
	}
	return nil
}
