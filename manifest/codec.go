package manifest

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/urlordjames/green-lib/errors"
)

type wireFile struct {
	Name string `json:"name"`
	Sha  string `json:"sha"`
	URL  string `json:"url"`
}

type wireDirectory struct {
	Name     string          `json:"name"`
	Files    []wireFile      `json:"files"`
	Children []wireDirectory `json:"children"`
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Directory, error) {
	var d Directory
	if err := json.Unmarshal(data, &d); err != nil {
		if stderrors.Is(err, ErrInvalid) {
			return nil, err
		}
		return nil, decodeError(err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// UnmarshalJSON implements json.Unmarshaler. Duplicate names within a node
// are rejected; other validation is left to Validate.
func (d *Directory) UnmarshalJSON(data []byte) error {
	var w wireDirectory
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeError(err)
	}

	decoded, err := fromWire(&w, "")
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}

// MarshalJSON implements json.Marshaler. Entries are written in name order
// and the root is unnamed.
func (d *Directory) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(d, ""))
}

func decodeError(err error) error {
	return errors.Wrap(fmt.Errorf("%w: %v", ErrInvalid, err), errors.CodeSchemaFailed, "decode manifest")
}

func fromWire(w *wireDirectory, at string) (*Directory, error) {
	d := NewDirectory()
	for _, f := range w.Files {
		if _, dup := d.Files[f.Name]; dup {
			return nil, invalid(joinPath(at, f.Name), "duplicate file name %q", f.Name)
		}
		d.Files[f.Name] = File{Digest: f.Sha, Source: f.URL}
	}
	for i := range w.Children {
		cw := &w.Children[i]
		if _, dup := d.Children[cw.Name]; dup {
			return nil, invalid(joinPath(at, cw.Name), "duplicate directory name %q", cw.Name)
		}
		child, err := fromWire(cw, joinPath(at, cw.Name))
		if err != nil {
			return nil, err
		}
		d.Children[cw.Name] = child
	}
	return d, nil
}

func toWire(d *Directory, name string) wireDirectory {
	w := wireDirectory{
		Name:     name,
		Files:    make([]wireFile, 0, len(d.Files)),
		Children: make([]wireDirectory, 0, len(d.Children)),
	}
	for _, fname := range d.FileNames() {
		f := d.Files[fname]
		w.Files = append(w.Files, wireFile{Name: fname, Sha: f.Digest, URL: f.Source})
	}
	for _, cname := range d.ChildNames() {
		w.Children = append(w.Children, toWire(d.Children[cname], cname))
	}
	return w
}

func joinPath(at, name string) string {
	if at == "" {
		return name
	}
	return at + "/" + name
}
