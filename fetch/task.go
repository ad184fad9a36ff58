package fetch

import (
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/urlordjames/green-lib/errors"
	gfs "github.com/urlordjames/green-lib/fs"
)

// Task materializes one remote file at Path. The destination is created by
// NewTask and is owned by the task until Run returns.
type Task struct {
	Path   string
	URL    string
	Digest string

	fsys gfs.Filesystem
	dest gfs.File
}

// NewTask creates or truncates the destination file at path.
func NewTask(fsys gfs.Filesystem, path, rawURL, sum string) (*Task, error) {
	dest, err := fsys.Create(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeFilesystem, "create destination",
			map[string]interface{}{"path": path})
	}
	return &Task{
		Path:   path,
		URL:    rawURL,
		Digest: sum,
		fsys:   fsys,
		dest:   dest,
	}, nil
}

// commit writes data to the destination and closes it.
func (t *Task) commit(data []byte) error {
	n, err := t.dest.Write(data)
	if err == nil && n != len(data) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeFilesystem, "write destination",
			map[string]interface{}{"path": t.Path})
	}

	dest := t.dest
	t.dest = nil
	if err := dest.Close(); err != nil {
		return errors.WrapWithContext(err, errors.CodeFilesystem, "close destination",
			map[string]interface{}{"path": t.Path})
	}
	return nil
}

// discard closes the destination if still open and removes it.
func (t *Task) discard() error {
	if t.dest != nil {
		_ = t.dest.Close()
		t.dest = nil
	}
	if err := t.fsys.Remove(t.Path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
