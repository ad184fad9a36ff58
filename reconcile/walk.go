package reconcile

import (
	"context"
	"maps"
	"path/filepath"
	"sort"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fetch"
	"github.com/urlordjames/green-lib/manifest"
	"github.com/urlordjames/green-lib/metrics"
)

const dirPerm = 0o755

// reconcile brings the directory at path into agreement with dir and recurses
// into its children. Fetch tasks are spawned on state.group.
func (r *Reconciler) reconcile(ctx context.Context, path string, dir *manifest.Directory, state *runState) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeCanceled, "reconciliation aborted")
	}

	fetchSet := maps.Clone(dir.Files)

	if state.isRoot {
		state.isRoot = false
	} else if err := r.prune(ctx, path, dir, fetchSet, state); err != nil {
		return err
	}

	names := make([]string, 0, len(fetchSet))
	for name := range fetchSet {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.spawn(ctx, filepath.Join(path, name), fetchSet[name], state); err != nil {
			return err
		}
	}

	for _, name := range dir.ChildNames() {
		childPath := filepath.Join(path, name)
		if err := r.fs.MkdirAll(childPath, dirPerm); err != nil {
			return errors.WrapWithContext(err, errors.CodeFilesystem, "create directory",
				map[string]interface{}{"path": childPath})
		}
		if err := r.reconcile(ctx, childPath, dir.Children[name], state); err != nil {
			return err
		}
	}
	return nil
}

// prune deletes the local entries of path that dir does not want and removes
// already-correct files from fetchSet.
func (r *Reconciler) prune(
	ctx context.Context,
	path string,
	dir *manifest.Directory,
	fetchSet map[string]manifest.File,
	state *runState,
) error {
	entries, err := r.fs.ReadDir(path)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeFilesystem, "list directory",
			map[string]interface{}{"path": path})
	}

	for _, entry := range entries {
		name := entry.Name()
		local := filepath.Join(path, name)

		switch {
		case entry.IsDir():
			if _, ok := dir.Children[name]; ok {
				continue
			}
			if err := r.fs.RemoveAll(local); err != nil {
				return errors.WrapWithContext(err, errors.CodeFilesystem, "remove directory",
					map[string]interface{}{"path": local})
			}
			r.deleted(local, state)

		case entry.Mode().IsRegular():
			sum, err := r.hashLocal(ctx, local)
			if err != nil {
				return err
			}
			if want, ok := dir.Files[name]; ok && digest.Equal(sum, want.Digest) {
				delete(fetchSet, name)
				state.kept++
				r.metrics.RecordEntry(metrics.ActionKeep)
				r.logger.Debug("keeping file", "path", local, "digest", sum)
				continue
			}
			if err := r.fs.Remove(local); err != nil {
				return errors.WrapWithContext(err, errors.CodeFilesystem, "remove file",
					map[string]interface{}{"path": local})
			}
			r.deleted(local, state)

		default:
			_, wantFile := dir.Files[name]
			_, wantDir := dir.Children[name]
			if !wantFile && !wantDir {
				r.logger.Debug("skipping special entry", "path", local, "mode", entry.Mode().String())
				continue
			}
			// Remove unlinks the entry itself; writing or descending through it
			// would reach outside the tree.
			if err := r.fs.Remove(local); err != nil {
				return errors.WrapWithContext(err, errors.CodeFilesystem, "remove special entry",
					map[string]interface{}{"path": local})
			}
			r.deleted(local, state)
		}
	}
	return nil
}

func (r *Reconciler) deleted(path string, state *runState) {
	state.deleted++
	r.metrics.RecordEntry(metrics.ActionDelete)
	r.logger.Debug("deleted entry", "path", path)
}

// hashLocal computes the digest of a local file on the hasher.
func (r *Reconciler) hashLocal(ctx context.Context, path string) (string, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeFilesystem, "open file",
			map[string]interface{}{"path": path})
	}
	defer func() { _ = f.Close() }()

	sum, err := r.hasher.Sum(ctx, f)
	if err != nil {
		if errors.HasCode(err, errors.CodeCanceled) {
			return "", err
		}
		return "", errors.WrapWithContext(err, errors.CodeFilesystem, "read file",
			map[string]interface{}{"path": path})
	}
	return sum, nil
}

// spawn creates the destination for f and starts its fetch task.
func (r *Reconciler) spawn(ctx context.Context, path string, f manifest.File, state *runState) error {
	task, err := fetch.NewTask(r.fs, path, f.Source, f.Digest)
	if err != nil {
		return err
	}

	state.spawned++
	r.metrics.RecordEntry(metrics.ActionFetch)
	r.logger.Debug("spawning fetch task", "path", path, "url", f.Source, "digest", f.Digest)

	state.group.Go(func() error {
		return r.fetcher.Run(ctx, task, state.reporter)
	})
	return nil
}
