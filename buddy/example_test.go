package buddy

import "fmt"

func Example() {
	al := New()
	al.Init(64 * 1024)

	b1 := al.Allocate(1000) // fits an 1024-byte block after the 16-byte header
	b2 := al.Allocate(8192) // needs a 16384-byte block for the same reason

	fmt.Printf("b1: len=%d cap=%d\n", len(b1), cap(b1))
	fmt.Printf("b2: len=%d cap=%d\n", len(b2), cap(b2))

	al.Free(b1)
	al.Free(b2)

	// Output:
	// b1: len=1000 cap=1008
	// b2: len=8192 cap=16368
}
