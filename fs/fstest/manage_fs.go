package fstest

import (
	"errors"
	iofs "io/fs"
	"testing"

	"github.com/urlordjames/green-lib/fs"
)

// TestManageFS tests removal and listing order.
func TestManageFS(t *testing.T, filesystem fs.Filesystem) {
	t.Run("Remove", func(t *testing.T) {
		testManageFSRemove(t, filesystem)
	})
	t.Run("RemoveAll", func(t *testing.T) {
		testManageFSRemoveAll(t, filesystem)
	})
	t.Run("ReadDirSorted", func(t *testing.T) {
		testManageFSReadDirSorted(t, filesystem)
	})
}

func testManageFSRemove(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.WriteFile("gone.txt", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile(): got error %v", err)
	}
	if err := filesystem.Remove("gone.txt"); err != nil {
		t.Fatalf("Remove(%q): got error %v, want nil", "gone.txt", err)
	}
	if _, err := filesystem.Stat("gone.txt"); !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Stat(%q) after Remove: got %v, want fs.ErrNotExist", "gone.txt", err)
	}
}

func testManageFSRemoveAll(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.MkdirAll("tree/sub/deeper", 0o755); err != nil {
		t.Fatalf("MkdirAll(): got error %v", err)
	}
	for _, p := range []string{"tree/a.txt", "tree/sub/b.txt", "tree/sub/deeper/c.txt"} {
		if err := filesystem.WriteFile(p, []byte(p), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): got error %v", p, err)
		}
	}

	if err := filesystem.RemoveAll("tree"); err != nil {
		t.Fatalf("RemoveAll(%q): got error %v, want nil", "tree", err)
	}
	exists, err := filesystem.Exists("tree")
	if err != nil {
		t.Fatalf("Exists(%q): got error %v", "tree", err)
	}
	if exists {
		t.Errorf("Exists(%q) after RemoveAll: got true, want false", "tree")
	}
}

func testManageFSReadDirSorted(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.MkdirAll("sorted", 0o755); err != nil {
		t.Fatalf("MkdirAll(): got error %v", err)
	}
	for _, name := range []string{"c", "a", "b"} {
		if err := filesystem.WriteFile("sorted/"+name, nil, 0o644); err != nil {
			t.Fatalf("WriteFile(): got error %v", err)
		}
	}

	entries, err := filesystem.ReadDir("sorted")
	if err != nil {
		t.Fatalf("ReadDir(%q): got error %v", "sorted", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("ReadDir(%q): got %v, want [a b c]", "sorted", names)
	}
}
