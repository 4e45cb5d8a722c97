// Command vladviz is a small demo that inits an arena, runs a scripted
// allocate/free sequence, and prints the visualizer grid — exercising
// the allocator and visualizer together the way a host program would.
package main

import (
	"fmt"
	"os"

	"github.com/vladmem/vlad/buddy"
	"github.com/vladmem/vlad/visualizer"
)

func main() {
	al := buddy.New()
	al.Init(64 * 1024)

	labels := visualizer.Labels{}

	a := al.Allocate(1000)
	b := al.Allocate(4000)
	c := al.Allocate(200)
	d := al.Allocate(500)
	if a == nil || b == nil || c == nil || d == nil {
		fmt.Fprintln(os.Stderr, "vladviz: allocation failed")
		os.Exit(1)
	}
	labels['a'] = a
	labels['b'] = b
	labels['c'] = c

	// d is scratch space freed immediately, left unlabeled so the grid
	// shows a coalesced free region next to the labeled allocations.
	al.Free(d)

	fmt.Print(al.Stats())

	out, err := visualizer.Render(al.Arena(), labels)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vladviz:", err)
		os.Exit(1)
	}
	fmt.Print(out)
}
