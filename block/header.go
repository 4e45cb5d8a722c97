// Package block defines the in-band header every buddy block carries:
// four naturally-aligned uint32 fields at the block's starting offset,
// magic-tagged FREE or ALLOC. The header is the only metadata a block
// has; its payload begins immediately after.
package block

import "unsafe"

// Magic constants, per spec and original_source/allocator2.c (Vlad the
// allocator uses these exact values; the values themselves, not just the
// scheme, are part of the header format).
const (
	Free  uint32 = 0xDEADBEEF
	Alloc uint32 = 0xBEEFDEAD
)

// HeaderSize is the size in bytes of the in-band header: four uint32
// fields {magic, size, next, prev} laid out in that order.
const HeaderSize = 16

// Header overlays the first HeaderSize bytes of every block.
type Header struct {
	Magic uint32
	Size  uint32
	Next  uint32
	Prev  uint32
}

// At overlays a *Header onto the arena at the given absolute address.
// The caller is responsible for ensuring addr is within the arena and
// aligned for a block start.
func At(addr unsafe.Pointer) *Header {
	return (*Header)(addr)
}

// IsFree reports whether the header's magic marks it as a free block.
func (h *Header) IsFree() bool { return h.Magic == Free }

// IsAlloc reports whether the header's magic marks it as an allocated
// block.
func (h *Header) IsAlloc() bool { return h.Magic == Alloc }
