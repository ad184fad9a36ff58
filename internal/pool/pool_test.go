package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPool(t *testing.T) {
	t.Run("default size", func(t *testing.T) {
		bp := NewBufferPool(0)
		assert.Equal(t, CopyBufferSize, bp.Size())

		buf := bp.Get()
		assert.Len(t, *buf, CopyBufferSize)
		bp.Put(buf)
	})

	t.Run("reused buffer is full length", func(t *testing.T) {
		bp := NewBufferPool(16)
		buf := bp.Get()
		*buf = (*buf)[:3]
		bp.Put(buf)

		again := bp.Get()
		assert.Len(t, *again, 16)
	})

	t.Run("foreign buffers are dropped", func(t *testing.T) {
		bp := NewBufferPool(16)
		foreign := make([]byte, 8)
		assert.NotPanics(t, func() {
			bp.Put(&foreign)
			bp.Put(nil)
		})
	})
}
