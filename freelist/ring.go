// Package freelist implements the circular doubly-linked ring of FREE
// blocks threaded through block headers living inside a single arena.
// The ring has no storage of its own beyond a head offset: membership,
// Next/Prev links, and ordering all live in the headers themselves.
package freelist

import (
	"github.com/vladmem/vlad/arena"
	"github.com/vladmem/vlad/block"
)

// Ring is the free ring over one arena. Offset 0 is a legitimate block
// offset, so emptiness is tracked with the separate hasAny boolean rather
// than a sentinel head value.
type Ring struct {
	a      *arena.Arena
	head   uint32
	hasAny bool
}

// New returns an empty ring over a.
func New(a *arena.Arena) *Ring {
	return &Ring{a: a}
}

func (r *Ring) header(offset uint32) *block.Header {
	return block.At(r.a.Ptr(offset))
}

// Empty reports whether the ring currently has no members.
func (r *Ring) Empty() bool { return !r.hasAny }

// Head returns the offset of the distinguished ring member. ok is false
// if the ring is empty.
func (r *Ring) Head() (offset uint32, ok bool) {
	return r.head, r.hasAny
}

// Seed initializes the ring to contain exactly one member, a block of
// the given offset whose header is already FREE with Size set. Used only
// at arena creation time.
func (r *Ring) Seed(offset uint32) {
	h := r.header(offset)
	h.Next = offset
	h.Prev = offset
	r.head = offset
	r.hasAny = true
}

// Len walks the ring once and counts its members. O(n); used by the
// preserve-one check, never on a hot path larger than the free list
// itself.
func (r *Ring) Len() int {
	if !r.hasAny {
		return 0
	}
	n := 1
	for cur := r.header(r.head).Next; cur != r.head; cur = r.header(cur).Next {
		n++
	}
	return n
}

// SpliceAfter inserts a new free block (offset newOff, header already
// populated with Size/Magic by the caller) immediately after the ring
// member at offset after.
func (r *Ring) SpliceAfter(after, newOff uint32) {
	ah := r.header(after)
	nextOff := ah.Next
	nh := r.header(nextOff)

	h := r.header(newOff)
	h.Next = nextOff
	h.Prev = after

	ah.Next = newOff
	nh.Prev = newOff
}

// Unlink removes offset from the ring, rewiring its neighbors. If offset
// was head, head advances to its old Next (the ring must be non-empty
// before calling, and the caller must handle the ring becoming empty).
func (r *Ring) Unlink(offset uint32) {
	h := r.header(offset)
	if h.Next == offset {
		// sole member
		r.hasAny = false
		r.head = 0
		return
	}
	prevH := r.header(h.Prev)
	nextH := r.header(h.Next)
	prevH.Next = h.Next
	nextH.Prev = h.Prev
	if r.head == offset {
		r.head = h.Next
	}
}

// InsertSorted inserts a free block at offset (header already populated)
// into the ring at its ascending-offset position, per spec.md §4.3 Phase
// A: walk from head until a member with a larger offset is found, or
// until wrapping back to head. If no forward step was taken — every
// existing member sits at a higher offset — offset becomes the new head.
func (r *Ring) InsertSorted(offset uint32) {
	if !r.hasAny {
		r.Seed(offset)
		return
	}

	first := r.head
	cur := first
	steps := 0
	for {
		curOff := cur
		if curOff > offset {
			break
		}
		next := r.header(cur).Next
		cur = next
		steps++
		if cur == first {
			break
		}
	}
	// cur is the first member with offset > our offset, or we wrapped
	// back to first meaning every member has a smaller offset.
	insertBefore := cur

	prevOff := r.header(insertBefore).Prev
	h := r.header(offset)
	h.Next = insertBefore
	h.Prev = prevOff
	r.header(prevOff).Next = offset
	r.header(insertBefore).Prev = offset

	if steps == 0 {
		r.head = offset
	}
}

// Walk calls fn once per ring member starting at head, in ring order.
// fn returning false stops the walk early.
func (r *Ring) Walk(fn func(offset uint32) bool) {
	if !r.hasAny {
		return
	}
	first := r.head
	cur := first
	for {
		if !fn(cur) {
			return
		}
		cur = r.header(cur).Next
		if cur == first {
			return
		}
	}
}

// Right returns the ring-order successor of offset.
func (r *Ring) Right(offset uint32) uint32 {
	return r.header(offset).Next
}

// Left returns the ring-order predecessor of offset.
func (r *Ring) Left(offset uint32) uint32 {
	return r.header(offset).Prev
}
