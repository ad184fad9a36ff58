package fstest

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"testing"

	"github.com/urlordjames/green-lib/fs"
)

// TestReadFS tests read operations: Open, Stat, ReadDir, ReadFile, Exists.
func TestReadFS(t *testing.T, filesystem fs.Filesystem) {
	testContent := []byte("hello, world")
	if err := filesystem.MkdirAll("testdir", 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): got error %v", "testdir", err)
	}
	if err := filesystem.WriteFile("testdir/testfile.txt", testContent, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): got error %v", "testdir/testfile.txt", err)
	}

	t.Run("OpenAndRead", func(t *testing.T) {
		testReadFSOpenAndRead(t, filesystem, testContent)
	})
	t.Run("StatFile", func(t *testing.T) {
		testReadFSStatFile(t, filesystem, testContent)
	})
	t.Run("StatDir", func(t *testing.T) {
		testReadFSStatDir(t, filesystem)
	})
	t.Run("ReadDir", func(t *testing.T) {
		testReadFSReadDir(t, filesystem)
	})
	t.Run("ReadFile", func(t *testing.T) {
		testReadFSReadFile(t, filesystem, testContent)
	})
	t.Run("OpenNotExist", func(t *testing.T) {
		testReadFSOpenNotExist(t, filesystem)
	})
	t.Run("Exists", func(t *testing.T) {
		testReadFSExists(t, filesystem)
	})
}

func testReadFSOpenAndRead(t *testing.T, filesystem fs.Filesystem, testContent []byte) {
	f, err := filesystem.Open("testdir/testfile.txt")
	if err != nil {
		t.Errorf("Open(%q): got error %v, want nil", "testdir/testfile.txt", err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			t.Errorf("Close(): got error %v", closeErr)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Errorf("ReadAll(): got error %v, want nil", err)
		return
	}
	if !bytes.Equal(data, testContent) {
		t.Errorf("Read(): got %q, want %q", data, testContent)
	}
}

func testReadFSStatFile(t *testing.T, filesystem fs.Filesystem, testContent []byte) {
	info, err := filesystem.Stat("testdir/testfile.txt")
	if err != nil {
		t.Errorf("Stat(%q): got error %v, want nil", "testdir/testfile.txt", err)
		return
	}
	if info.IsDir() {
		t.Errorf("Stat(%q): IsDir() = true, want false", "testdir/testfile.txt")
	}
	if !info.Mode().IsRegular() {
		t.Errorf("Stat(%q): Mode().IsRegular() = false, want true", "testdir/testfile.txt")
	}
	if info.Size() != int64(len(testContent)) {
		t.Errorf("Stat(%q): Size() = %d, want %d", "testdir/testfile.txt", info.Size(), len(testContent))
	}
}

func testReadFSStatDir(t *testing.T, filesystem fs.Filesystem) {
	info, err := filesystem.Stat("testdir")
	if err != nil {
		t.Errorf("Stat(%q): got error %v, want nil", "testdir", err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Stat(%q): IsDir() = false, want true", "testdir")
	}
}

func testReadFSReadDir(t *testing.T, filesystem fs.Filesystem) {
	entries, err := filesystem.ReadDir("testdir")
	if err != nil {
		t.Errorf("ReadDir(%q): got error %v, want nil", "testdir", err)
		return
	}
	if len(entries) != 1 {
		t.Errorf("ReadDir(%q): got %d entries, want 1", "testdir", len(entries))
		return
	}
	if entries[0].Name() != "testfile.txt" {
		t.Errorf("ReadDir(%q): got entry name %q, want %q", "testdir", entries[0].Name(), "testfile.txt")
	}
	if entries[0].IsDir() {
		t.Errorf("ReadDir(%q): entry IsDir() = true, want false", "testdir")
	}
}

func testReadFSReadFile(t *testing.T, filesystem fs.Filesystem, testContent []byte) {
	data, err := filesystem.ReadFile("testdir/testfile.txt")
	if err != nil {
		t.Errorf("ReadFile(%q): got error %v, want nil", "testdir/testfile.txt", err)
		return
	}
	if !bytes.Equal(data, testContent) {
		t.Errorf("ReadFile(%q): got %q, want %q", "testdir/testfile.txt", data, testContent)
	}
}

func testReadFSOpenNotExist(t *testing.T, filesystem fs.Filesystem) {
	_, err := filesystem.Open("nonexistent")
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Open(%q): got error %v, want fs.ErrNotExist", "nonexistent", err)
	}
	_, err = filesystem.Stat("nonexistent")
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", "nonexistent", err)
	}
}

func testReadFSExists(t *testing.T, filesystem fs.Filesystem) {
	for path, want := range map[string]bool{
		"testdir/testfile.txt": true,
		"testdir":              true,
		"nonexistent":          false,
	} {
		exists, err := filesystem.Exists(path)
		if err != nil {
			t.Errorf("Exists(%q): got error %v, want nil", path, err)
			continue
		}
		if exists != want {
			t.Errorf("Exists(%q): got %v, want %v", path, exists, want)
		}
	}
}
