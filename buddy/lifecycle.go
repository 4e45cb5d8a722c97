// Package buddy is the allocator core: a best-fit, split/coalesce buddy
// allocator layered over a single arena, with its free blocks threaded
// through an in-band doubly-linked ring (see freelist.Ring).
package buddy

import (
	"log"

	"github.com/vladmem/vlad/arena"
	"github.com/vladmem/vlad/block"
	"github.com/vladmem/vlad/freelist"
)

// Allocator is a single buddy allocator instance over one arena. The
// zero value is a valid, uninitialized allocator; call Init before use.
type Allocator struct {
	a    *arena.Arena
	ring *freelist.Ring
}

// New returns an uninitialized allocator. Call Init before Allocate/Free.
func New() *Allocator {
	return &Allocator{}
}

// Init creates the arena if one does not already exist. n is rounded up
// to the smallest power of two >= max(n, arena.MinSize). Re-Init before
// Teardown is a no-op, even if n differs from the first call.
//
// Arena acquisition is the allocator's only fallible step, and there is
// no recovering from it failing, so it logs a diagnostic and aborts the
// process rather than returning an error.
func (al *Allocator) Init(n uint32) {
	if al.a != nil {
		return
	}

	size := arena.RoundUpSize(n)
	a, err := arena.New(size)
	if err != nil {
		log.Fatalf("buddy: arena acquisition failed: %v", err)
	}

	ring := freelist.New(a)
	h := block.At(a.Ptr(0))
	h.Magic = block.Free
	h.Size = size
	ring.Seed(0)

	al.a = a
	al.ring = ring
}

// Teardown releases the arena and marks the allocator uninitialized.
// A subsequent Init starts a fresh arena.
func (al *Allocator) Teardown() {
	al.a = nil
	al.ring = nil
}

// Initialized reports whether Init has been called without a matching
// Teardown.
func (al *Allocator) Initialized() bool {
	return al.a != nil
}

// Arena exposes the underlying arena for read-only external collaborators
// (the visualizer). It must never be mutated outside this package.
func (al *Allocator) Arena() *arena.Arena {
	return al.a
}
