package block

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestHeaderReadWrite(t *testing.T) {
	buf := make([]byte, HeaderSize*2)
	h := At(unsafe.Pointer(&buf[0]))

	h.Magic = Free
	h.Size = 128
	h.Next = 0
	h.Prev = 0

	assert.True(t, h.IsFree())
	assert.False(t, h.IsAlloc())

	h.Magic = Alloc
	assert.True(t, h.IsAlloc())
	assert.False(t, h.IsFree())
}

func TestHeaderSize(t *testing.T) {
	assert.Equal(t, 16, HeaderSize)
	assert.Equal(t, HeaderSize, int(unsafe.Sizeof(Header{})))
}
