// Package fstest provides a conformance test suite for fs.Filesystem
// implementations.
//
// The suite checks the contracts the reconciler relies on: directory listings
// are sorted, MkdirAll tolerates existing directories, RemoveAll removes whole
// subtrees, and missing paths report fs.ErrNotExist.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() fs.Filesystem {
//	        return myprovider.New()
//	    })
//	}
package fstest

import (
	"slices"
	"testing"

	"github.com/urlordjames/green-lib/fs"
)

// TestSuite runs all conformance tests against a filesystem.
// The newFS function should return a fresh, empty filesystem for each test.
func TestSuite(t *testing.T, newFS func() fs.Filesystem) {
	TestSuiteWithSkip(t, newFS, nil)
}

// TestSuiteWithSkip runs conformance tests, skipping the named groups
// ("ReadFS", "WriteFS", "ManageFS").
func TestSuiteWithSkip(t *testing.T, newFS func() fs.Filesystem, skipTests []string) {
	groups := []struct {
		name string
		run  func(*testing.T, fs.Filesystem)
	}{
		{"ReadFS", TestReadFS},
		{"WriteFS", TestWriteFS},
		{"ManageFS", TestManageFS},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if slices.Contains(skipTests, g.name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			g.run(t, newFS())
		})
	}
}
