// Package fs defines the filesystem abstraction the reconciler mutates.
//
// Implementations live in subpackages (see fs/billy). Keeping the tree walk and
// the fetch tasks behind this interface lets the whole engine run against an
// in-memory filesystem in tests and against the OS filesystem in production.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// File represents an open file handle.
// Implementations should behave consistently with the standard library.
type File interface {
	Close() error
	Name() string
	Read(p []byte) (n int, err error)
	Stat() (fs.FileInfo, error)
	Write(p []byte) (n int, err error)
}

// Filesystem is the set of operations the reconciler needs from a local tree.
// Errors for missing paths must satisfy errors.Is(err, fs.ErrNotExist).
type Filesystem interface {
	// Create creates or truncates the named file.
	Create(name string) (File, error)

	// Open opens the named file for reading.
	Open(name string) (File, error)

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// MkdirAll creates a directory and any missing parents. An existing
	// directory is not an error.
	MkdirAll(path string, perm os.FileMode) error

	// ReadDir lists the entries of a directory, sorted by name.
	ReadDir(dirname string) ([]os.FileInfo, error)

	// ReadFile reads an entire file.
	ReadFile(path string) ([]byte, error)

	// Remove removes a file or an empty directory.
	Remove(name string) error

	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error

	// Stat returns file info for name.
	Stat(name string) (os.FileInfo, error)

	// Walk walks the tree rooted at root.
	Walk(root string, walkFn filepath.WalkFunc) error

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
