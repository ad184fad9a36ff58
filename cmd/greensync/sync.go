package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/fetch"
	"github.com/urlordjames/green-lib/fs"
	"github.com/urlordjames/green-lib/fs/billy"
	"github.com/urlordjames/green-lib/gamedir"
	"github.com/urlordjames/green-lib/manifest"
	"github.com/urlordjames/green-lib/progress"
	"github.com/urlordjames/green-lib/reconcile"
)

// targetOptions selects the directory a command reconciles.
type targetOptions struct {
	dir    string
	create bool
}

func (t *targetOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.dir, "dir", "", "directory to reconcile (default: the platform game directory)")
	cmd.Flags().BoolVar(&t.create, "create", false, "create the directory if it does not exist")
}

// resolve returns the absolute target directory, creating it if requested.
func (t *targetOptions) resolve() (string, error) {
	dir := t.dir
	if dir == "" {
		dir = gamedir.Default()
	}
	abs, err := fs.GetAbs(dir)
	if err != nil {
		return "", err
	}

	ok, err := fs.Exists(abs)
	if err != nil {
		return "", err
	}
	if !ok {
		if !t.create {
			return "", fmt.Errorf("directory %s does not exist (use --create to create it)", abs)
		}
		if err := billy.NewOSFS("/").MkdirAll(abs, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", abs, err)
		}
	}
	return abs, nil
}

func newSyncCmd(a *app) *cobra.Command {
	var (
		target      targetOptions
		manifestURL string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a directory against a manifest",
		Long: `Reconcile a directory against a manifest.

Every directory below the target is made to match the manifest exactly:
unknown entries are deleted, files with the wrong content are replaced and
missing files are downloaded. Entries directly inside the target directory
are never deleted.

Manifests and files may be served over http, https or s3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if manifestURL == "" {
				return fmt.Errorf("--manifest is required")
			}
			root, err := target.resolve()
			if err != nil {
				return err
			}

			dir, err := manifest.Fetch(cmd.Context(), a.source, manifestURL)
			if err != nil {
				return err
			}
			return a.reconcile(cmd.Context(), root, dir)
		},
	}

	target.register(cmd)
	cmd.Flags().StringVar(&manifestURL, "manifest", "", "manifest URL")
	return cmd
}

// reconcile runs one reconciliation of root against dir, displaying progress
// and writing metrics.
func (a *app) reconcile(ctx context.Context, root string, dir *manifest.Directory) error {
	hasher := digest.NewHasher(0)
	defer hasher.Close()

	fetcher := fetch.NewFetcher(a.source,
		fetch.WithRetryPolicy(a.retryPolicy()),
		fetch.WithHasher(hasher),
		fetch.WithLogger(a.logger),
		fetch.WithMetrics(a.metrics),
	)
	r := reconcile.New(
		reconcile.WithFilesystem(billy.NewOSFS(root)),
		reconcile.WithFetcher(fetcher),
		reconcile.WithHasher(hasher),
		reconcile.WithLogger(a.logger.With("root", root)),
		reconcile.WithMetrics(a.metrics),
		reconcile.WithMaxConcurrency(a.opts.concurrency),
	)
	defer r.Close()

	events := make(chan progress.Event)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.displayProgress(events)
	}()

	res, err := r.Run(ctx, ".", dir, reconcile.WithProgress(events))
	close(events)
	wg.Wait()

	if mErr := a.writeMetrics(); mErr != nil {
		a.logger.Warn("failed to write metrics", "error", mErr)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s is up to date: %d downloaded, %d unchanged, %d removed in %s\n",
		root, res.Fetched, res.Kept, res.Deleted, res.Duration.Round(time.Millisecond))
	return nil
}

// displayProgress renders download progress on stderr until events is closed.
func (a *app) displayProgress(events <-chan progress.Event) {
	var counter progress.Counter
	drawn := false
	counter.Consume(events, func(s progress.Snapshot) {
		if a.opts.quiet {
			return
		}
		drawn = true
		if !s.HasTotal {
			fmt.Fprintf(a.stderr, "\rdownloaded %d", s.Done)
			return
		}
		fmt.Fprintf(a.stderr, "\rdownloaded %d/%d (%3.0f%%)", s.Done, s.Total, s.Fraction()*100)
	})
	if drawn {
		fmt.Fprintln(a.stderr)
	}
}
