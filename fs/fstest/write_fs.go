package fstest

import (
	"bytes"
	"testing"

	"github.com/urlordjames/green-lib/fs"
)

// TestWriteFS tests write operations: Create, WriteFile, MkdirAll.
func TestWriteFS(t *testing.T, filesystem fs.Filesystem) {
	t.Run("CreateAndWrite", func(t *testing.T) {
		testWriteFSCreate(t, filesystem)
	})
	t.Run("CreateTruncates", func(t *testing.T) {
		testWriteFSCreateTruncates(t, filesystem)
	})
	t.Run("MkdirAllExisting", func(t *testing.T) {
		testWriteFSMkdirAllExisting(t, filesystem)
	})
}

func testWriteFSCreate(t *testing.T, filesystem fs.Filesystem) {
	testData := []byte("test data for Create")

	f, err := filesystem.Create("testfile.txt")
	if err != nil {
		t.Fatalf("Create(%q): got error %v, want nil", "testfile.txt", err)
	}

	n, err := f.Write(testData)
	if err != nil {
		_ = f.Close()
		t.Fatalf("Write(): got error %v, want nil", err)
	}
	if n != len(testData) {
		_ = f.Close()
		t.Fatalf("Write(): wrote %d bytes, want %d", n, len(testData))
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}

	got, err := filesystem.ReadFile("testfile.txt")
	if err != nil {
		t.Fatalf("ReadFile(%q): got error %v, want nil", "testfile.txt", err)
	}
	if !bytes.Equal(got, testData) {
		t.Errorf("ReadFile(%q): got %q, want %q", "testfile.txt", got, testData)
	}
}

func testWriteFSCreateTruncates(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.WriteFile("trunc.txt", []byte("a much longer original body"), 0o644); err != nil {
		t.Fatalf("WriteFile(): got error %v", err)
	}

	f, err := filesystem.Create("trunc.txt")
	if err != nil {
		t.Fatalf("Create(%q): got error %v, want nil", "trunc.txt", err)
	}
	if _, err := f.Write([]byte("short")); err != nil {
		_ = f.Close()
		t.Fatalf("Write(): got error %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(): got error %v", err)
	}

	got, err := filesystem.ReadFile("trunc.txt")
	if err != nil {
		t.Fatalf("ReadFile(): got error %v", err)
	}
	if string(got) != "short" {
		t.Errorf("ReadFile(%q): got %q, want %q", "trunc.txt", got, "short")
	}
}

func testWriteFSMkdirAllExisting(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): got error %v, want nil", "a/b/c", err)
	}
	if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
		t.Errorf("MkdirAll(%q) on existing dir: got error %v, want nil", "a/b/c", err)
	}
	ok, err := fs.IsDir(filesystem, "a/b")
	if err != nil || !ok {
		t.Errorf("IsDir(%q): got %v, %v, want true, nil", "a/b", ok, err)
	}
}
