// Package manifest describes the desired state of a managed directory tree.
//
// A manifest is a tree of Directory nodes. Each node maps file names to the
// digest and source URL of their expected content, and subdirectory names to
// child nodes. The root node is anchored to a local path by the caller and
// its own name is ignored.
//
// On the wire a manifest is JSON:
//
//	{
//	  "name": "",
//	  "files": [{"name": "a.txt", "sha": "<sha256 hex>", "url": "https://..."}],
//	  "children": [{"name": "mods", "files": [...], "children": [...]}]
//	}
package manifest

import (
	stderrors "errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
)

// ErrInvalid is matched (via errors.Is) by every validation failure.
var ErrInvalid = stderrors.New("invalid manifest")

// File is the expected content of one file.
type File struct {
	// Digest is the lowercase hex SHA-256 of the content.
	Digest string
	// Source is the URL the content is fetched from.
	Source string
}

// Directory is one node of the desired-state tree.
type Directory struct {
	Files    map[string]File
	Children map[string]*Directory
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		Files:    make(map[string]File),
		Children: make(map[string]*Directory),
	}
}

// AddFile sets the file name and returns d.
func (d *Directory) AddFile(name, sum, source string) *Directory {
	if d.Files == nil {
		d.Files = make(map[string]File)
	}
	d.Files[name] = File{Digest: sum, Source: source}
	return d
}

// Child returns the child directory name, creating it if needed.
func (d *Directory) Child(name string) *Directory {
	if d.Children == nil {
		d.Children = make(map[string]*Directory)
	}
	child, ok := d.Children[name]
	if !ok {
		child = NewDirectory()
		d.Children[name] = child
	}
	return child
}

// FileNames returns the file names of d in sorted order.
func (d *Directory) FileNames() []string {
	return sortedKeys(d.Files)
}

// ChildNames returns the child directory names of d in sorted order.
func (d *Directory) ChildNames() []string {
	return sortedKeys(d.Children)
}

// Count returns the number of files and directories below d, excluding d.
func (d *Directory) Count() (files, dirs int) {
	files = len(d.Files)
	for _, child := range d.Children {
		f, c := child.Count()
		files += f
		dirs += c + 1
	}
	return files, dirs
}

// Walk calls fn for every file in the tree in depth-first, name-sorted order.
// rel is the slash-separated path of the file relative to d.
func (d *Directory) Walk(fn func(rel string, f File) error) error {
	return d.walk("", fn)
}

func (d *Directory) walk(prefix string, fn func(rel string, f File) error) error {
	for _, name := range d.FileNames() {
		if err := fn(path.Join(prefix, name), d.Files[name]); err != nil {
			return err
		}
	}
	for _, name := range d.ChildNames() {
		if err := d.Children[name].walk(path.Join(prefix, name), fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidName reports whether name can be used as a single path element.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// Validate checks every node of the tree: names must be single path
// elements, digests well-formed, sources non-empty, and no name may be used
// for both a file and a directory in the same node.
func (d *Directory) Validate() error {
	return d.validate("")
}

func (d *Directory) validate(at string) error {
	for _, name := range d.FileNames() {
		f := d.Files[name]
		where := path.Join(at, name)
		if !ValidName(name) {
			return invalid(where, "unsafe file name %q", name)
		}
		if err := digest.Validate(f.Digest); err != nil {
			return invalid(where, "malformed digest %q", f.Digest)
		}
		if f.Source == "" {
			return invalid(where, "missing source url")
		}
		if _, ok := d.Children[name]; ok {
			return invalid(where, "name used for both a file and a directory")
		}
	}

	for _, name := range d.ChildNames() {
		where := path.Join(at, name)
		if !ValidName(name) {
			return invalid(where, "unsafe directory name %q", name)
		}
		child := d.Children[name]
		if child == nil {
			return invalid(where, "empty directory node")
		}
		if err := child.validate(where); err != nil {
			return err
		}
	}
	return nil
}

func invalid(at, format string, args ...interface{}) error {
	return errors.WrapWithContext(
		fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)),
		errors.CodeSchemaFailed, "manifest validation failed",
		map[string]interface{}{"path": at},
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
