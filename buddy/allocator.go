package buddy

import (
	"fmt"
	"math/bits"
	"strings"
	"unsafe"

	"github.com/vladmem/vlad/block"
)

// H is the header size every block pays, exported under this name
// because spec.md refers to it throughout as H.
const H = block.HeaderSize

// nextPow2 returns the smallest power of two >= x. x must be > 0.
func nextPow2(x uint32) uint32 {
	if x&(x-1) == 0 {
		return x
	}
	return 1 << uint(bits.Len32(x))
}

// Allocate returns a byte slice of at least n bytes backed by a newly
// carved block, or nil if no block can be produced.
//
// Failure is intentionally ambiguous between an oversize request and
// ordinary exhaustion (including the preserve-one rule) — both return
// nil, per spec.md §7.
func (al *Allocator) Allocate(n uint32) []byte {
	if al.a == nil {
		panic("buddy: Allocate called before Init")
	}
	if n == 0 {
		return nil
	}

	total := n + H
	if total < n || total > al.a.Size() {
		return nil // oversize request
	}
	target := nextPow2(total)

	chosenOff, ok := al.bestFit(target)
	if !ok {
		return nil
	}
	chosenHdr := al.header(chosenOff)

	// Preserve-one: never drain the ring to empty.
	if al.ring.Len() == 1 && chosenHdr.Size == target {
		return nil
	}

	al.splitDown(chosenOff, target)

	al.ring.Unlink(chosenOff)
	chosenHdr.Magic = block.Alloc

	payloadPtr := unsafe.Add(al.a.Ptr(chosenOff), H)
	blockSize := chosenHdr.Size
	return unsafe.Slice((*byte)(payloadPtr), blockSize-H)[:n]
}

// bestFit scans the free ring from head and returns the offset of the
// smallest FREE block with size >= target, ties broken by traversal
// order. ok is false if no block is large enough.
func (al *Allocator) bestFit(target uint32) (offset uint32, ok bool) {
	var bestOff uint32
	found := false
	al.ring.Walk(func(off uint32) bool {
		h := al.header(off)
		if !h.IsFree() {
			panic("buddy: non-FREE block in free ring")
		}
		if h.Size >= target {
			if !found || h.Size < al.header(bestOff).Size {
				bestOff = off
				found = true
			}
		}
		return true
	})
	return bestOff, found
}

// splitDown halves chosenOff's block repeatedly while the lower half
// would still be >= target, splicing each freed upper half into the ring
// immediately after chosenOff.
func (al *Allocator) splitDown(chosenOff uint32, target uint32) {
	h := al.header(chosenOff)
	for h.Size/2 >= target {
		half := h.Size / 2
		siblingOff := chosenOff + half

		sh := al.header(siblingOff)
		sh.Magic = block.Free
		sh.Size = half

		al.ring.SpliceAfter(chosenOff, siblingOff)

		h.Size = half
	}
}

// Free returns a previously allocated block to the allocator, re-
// inserting it into the free ring in ascending-offset order and then
// running the iterative buddy-coalesce fixed point.
//
// payload must be a slice returned by Allocate and not yet freed;
// passing anything else is a contract violation (spec.md §7) and is
// only partially guarded against — a magic mismatch panics, but a
// fabricated in-bounds, correctly-aligned slice cannot be detected.
func (al *Allocator) Free(payload []byte) {
	if al.a == nil {
		panic("buddy: Free called before Init")
	}
	if len(payload) == 0 {
		return
	}

	dataOff, ok := al.a.OffsetOf(unsafe.Pointer(&payload[0]))
	if !ok || dataOff < H {
		panic("buddy: block not in arena")
	}
	blockOff := dataOff - H

	h := al.header(blockOff)
	if h.Magic == block.Free {
		panic("buddy: double free")
	}
	if h.Magic != block.Alloc {
		panic("buddy: invalid block")
	}

	h.Magic = block.Free
	al.ring.InsertSorted(blockOff)
	al.coalesce(blockOff)
}

// coalesce runs the fixed-point buddy-merge state machine starting from
// curr, per spec.md §4.3 Phase B. Parity of curr is recomputed from its
// *current* size on every iteration, before any merge mutates it — this
// is the one subtlety spec.md calls out explicitly.
func (al *Allocator) coalesce(curr uint32) {
	for {
		if al.tryMergeRight(curr) {
			continue
		}
		if next, merged := al.tryMergeLeft(curr); merged {
			curr = next
			continue
		}
		return
	}
}

func (al *Allocator) tryMergeRight(curr uint32) bool {
	h := al.header(curr)
	r := al.ring.Right(curr)
	if r == curr {
		return false
	}
	rh := al.header(r)
	if rh.Size != h.Size || !rh.IsFree() {
		return false
	}
	if curr+h.Size != r {
		return false
	}
	if (curr/h.Size)%2 != 0 {
		return false
	}
	al.ring.Unlink(r)
	h.Size *= 2
	return true
}

func (al *Allocator) tryMergeLeft(curr uint32) (uint32, bool) {
	h := al.header(curr)
	l := al.ring.Left(curr)
	if l == curr {
		return curr, false
	}
	lh := al.header(l)
	if lh.Size != h.Size || !lh.IsFree() {
		return curr, false
	}
	if l+lh.Size != curr {
		return curr, false
	}
	if (curr/h.Size)%2 != 1 {
		return curr, false
	}
	al.ring.Unlink(curr)
	lh.Size *= 2
	return l, true
}

func (al *Allocator) header(offset uint32) *block.Header {
	return block.At(al.a.Ptr(offset))
}

// Stats renders a text listing of every free block — address, size,
// next, prev, magic — walking the free ring once starting at head.
func (al *Allocator) Stats() string {
	if al.a == nil {
		return "buddy: not initialized\n"
	}
	var sb strings.Builder
	sb.WriteString("Free Block(s):\n")
	i := 1
	al.ring.Walk(func(off uint32) bool {
		h := al.header(off)
		magic := "FREE"
		if h.Magic == block.Alloc {
			magic = "ALLOC"
		}
		fmt.Fprintf(&sb, "%d: addr = %d, size = %d, next = %d, prev = %d, magic = %s\n",
			i, off, h.Size, h.Next, h.Prev, magic)
		i++
		return true
	})
	return sb.String()
}
