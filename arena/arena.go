// Package arena owns the single contiguous byte region a buddy allocator
// carves into blocks. It knows nothing about headers, free lists, or
// buddies — only how to acquire the region and translate between
// absolute addresses and offsets relative to its base.
package arena

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// MinSize is the smallest arena the allocator will ever create, per
// spec: S >= 512.
const MinSize = 512

// Arena is a fixed-size byte region addressed by uint32 offsets from its
// base. It is the sole owner of the storage; blocks never own memory of
// their own.
type Arena struct {
	buf  []byte
	base unsafe.Pointer
	size uint32
}

// RoundUpSize rounds n up to the smallest power of two that is at least
// max(n, MinSize).
func RoundUpSize(n uint32) uint32 {
	if n < MinSize {
		n = MinSize
	}
	if n&(n-1) == 0 {
		return n
	}
	shift := bits.Len32(n)
	return 1 << uint(shift)
}

// New acquires a contiguous region of exactly size bytes. size must
// already be a power of two >= MinSize; callers (buddy.Init) are
// responsible for rounding via RoundUpSize.
//
// The backing buffer is obtained via dirtmake.Bytes, which skips the
// zero-fill a plain make([]byte, n) would pay. The allocator writes each
// block's header before reading it and never relies on payload bytes
// being zero.
func New(size uint32) (*Arena, error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("arena: size must be a power of two, got %d", size)
	}
	if size < MinSize {
		return nil, fmt.Errorf("arena: size must be >= %d, got %d", MinSize, size)
	}
	buf := dirtmake.Bytes(int(size), int(size))
	return &Arena{
		buf:  buf,
		base: unsafe.Pointer(&buf[0]),
		size: size,
	}, nil
}

// Size returns the total arena size in bytes.
func (a *Arena) Size() uint32 { return a.size }

// Bytes exposes the raw backing buffer, for callers (the visualizer)
// that need to read header fields without going through block accessors.
func (a *Arena) Bytes() []byte { return a.buf }

// Ptr returns the absolute pointer at the given offset.
func (a *Arena) Ptr(offset uint32) unsafe.Pointer {
	return unsafe.Add(a.base, offset)
}

// OffsetOf converts an absolute pointer previously obtained from Ptr (or
// a payload pointer the caller computed from one) back to an arena
// offset. ok is false if p does not land inside the arena.
func (a *Arena) OffsetOf(p unsafe.Pointer) (offset uint32, ok bool) {
	diff := uintptr(p) - uintptr(a.base)
	if diff >= uintptr(a.size) {
		return 0, false
	}
	return uint32(diff), true
}

// InBounds reports whether [offset, offset+size) lies entirely within
// the arena.
func (a *Arena) InBounds(offset, size uint32) bool {
	if offset >= a.size {
		return false
	}
	end := offset + size
	return end >= offset && end <= a.size
}
