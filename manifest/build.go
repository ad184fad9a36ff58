package manifest

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fs"
)

// Build describes the tree at root as a manifest. Each file's source is
// baseURL joined with the file's slash-separated path relative to root, with
// every path element escaped. Entries that are neither regular files nor
// directories are skipped.
//
// The result is what a publisher uploads alongside the files themselves so
// that clients can reconcile against it.
func Build(ctx context.Context, fsys fs.Filesystem, root, baseURL string, hasher *digest.Hasher) (*Directory, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid base url",
			map[string]interface{}{"url": baseURL})
	}

	isDir, err := fs.IsDir(fsys, root)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeFilesystem, "stat directory",
			map[string]interface{}{"path": root})
	}
	if !isDir {
		return nil, errors.WrapWithContext(nil, errors.CodeNotFound, "not a directory",
			map[string]interface{}{"path": root})
	}

	d := NewDirectory()
	if err := build(ctx, fsys, root, base, nil, d, hasher); err != nil {
		return nil, err
	}
	return d, nil
}

func build(
	ctx context.Context,
	fsys fs.Filesystem,
	dir string,
	base *url.URL,
	rel []string,
	d *Directory,
	hasher *digest.Hasher,
) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeFilesystem, "list directory",
			map[string]interface{}{"path": dir})
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeCanceled, "build aborted")
		}

		name := entry.Name()
		local := path.Join(dir, name)
		elems := append(append([]string(nil), rel...), name)

		switch {
		case entry.IsDir():
			if err := build(ctx, fsys, local, base, elems, d.Child(name), hasher); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			sum, err := hashFile(ctx, fsys, local, hasher)
			if err != nil {
				return err
			}
			d.AddFile(name, sum, sourceURL(base, elems))
		}
	}
	return nil
}

func hashFile(ctx context.Context, fsys fs.Filesystem, name string, hasher *digest.Hasher) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeFilesystem, "open file",
			map[string]interface{}{"path": name})
	}
	defer func() { _ = f.Close() }()

	var sum string
	if hasher != nil {
		sum, err = hasher.Sum(ctx, f)
	} else {
		sum, err = digest.FromReader(f)
	}
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeFilesystem, "hash file",
			map[string]interface{}{"path": name})
	}
	return sum, nil
}

func sourceURL(base *url.URL, elems []string) string {
	escaped := make([]string, len(elems))
	for i, e := range elems {
		escaped[i] = url.PathEscape(e)
	}
	return base.String() + "/" + strings.Join(escaped, "/")
}
