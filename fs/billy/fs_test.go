package billy

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parentfs "github.com/urlordjames/green-lib/fs"
	"github.com/urlordjames/green-lib/fs/fstest"
)

func TestInMemoryFS_Suite(t *testing.T) {
	fstest.TestSuite(t, func() parentfs.Filesystem { return NewInMemoryFS() })
}

func TestOSFS_Suite(t *testing.T) {
	fstest.TestSuite(t, func() parentfs.Filesystem { return NewOSFS(t.TempDir()) })
}

func TestInMemoryFS_ConcurrentCreateRemove(t *testing.T) {
	fs := NewInMemoryFS()
	require.NoError(t, fs.MkdirAll("/root", 0o755))

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("/root/file-%02d", i)
			f, err := fs.Create(name)
			if !assert.NoError(t, err) {
				return
			}
			_, err = f.Write([]byte(name))
			assert.NoError(t, err)
			assert.NoError(t, f.Close())
			if i%2 == 0 {
				assert.NoError(t, fs.Remove(name))
			}
		}(i)
	}
	wg.Wait()

	entries, err := fs.ReadDir("/root")
	require.NoError(t, err)
	assert.Len(t, entries, 16)
}

func TestFile_Stat(t *testing.T) {
	fs := NewInMemoryFS()
	f, err := fs.Create("/stat.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("12345"))
	require.NoError(t, err)

	info, err := f.Stat()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, int64(5), info.Size())
	assert.Equal(t, "stat.txt", info.Name())
}
