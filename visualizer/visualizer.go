// Package visualizer draws a read-only ASCII/ANSI 2D map of a buddy
// arena plus size tables. It consumes only block headers — magic and
// size — by walking the arena linearly from offset 0. It never touches
// the free ring; the allocator core and visualizer share no state
// beyond the header layout.
package visualizer

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/fatih/color"

	"github.com/vladmem/vlad/arena"
	"github.com/vladmem/vlad/block"
)

// MaxSize is the largest arena this visualizer is required to render
// correctly, per spec.md §1/§6.
const MaxSize = 16 * 1024 * 1024

const (
	gridWidth  = 32
	gridHeight = 16
)

var (
	freeColor  = color.New(color.BgGreen, color.FgBlack)
	allocColor = color.New(color.BgBlue, color.FgWhite)
	freeFG     = color.New(color.FgGreen)
	allocFG    = color.New(color.FgBlue)
)

// point is a cell coordinate in the gridWidth x gridHeight grid.
type point struct{ x, y int }

// Labels maps the single-letter labels a caller has assigned to
// previously-allocated payload slices, for the visualizer to resolve
// back to block offsets and annotate on the grid. Only 'a'..'z' keys are
// meaningful; at most 26 labels can ever be drawn.
type Labels map[byte][]byte

// Render draws the arena's grid, legend line, and size tables as a
// single string. It returns an error if the arena exceeds MaxSize, since
// correctness above that bound is explicitly out of scope.
func Render(a *arena.Arena, labels Labels) (string, error) {
	if a.Size() > MaxSize {
		return "", fmt.Errorf("visualizer: arena of %d bytes exceeds the %d byte limit", a.Size(), MaxSize)
	}

	grid := newGrid()

	var freeSizes, allocSizes []string

	freeCount := 1
	var offset uint32
	for offset < a.Size() {
		h := block.At(a.Ptr(offset))
		if h.IsFree() {
			label := strconv.Itoa(freeCount)
			freeSizes = append(freeSizes, fmt.Sprintf("%d) %d bytes", freeCount, h.Size))
			fillBlock(grid, a.Size(), offset, h.Size, label, freeColor)
			freeCount++
		}
		offset += h.Size
	}

	for letter := byte('a'); letter <= 'z'; letter++ {
		payload, ok := labels[letter]
		if !ok || len(payload) == 0 {
			continue
		}
		dataOff, ok := a.OffsetOf(unsafe.Pointer(&payload[0]))
		if !ok || dataOff < block.HeaderSize {
			continue
		}
		blockOff := dataOff - block.HeaderSize
		h := block.At(a.Ptr(blockOff))
		allocSizes = append(allocSizes, fmt.Sprintf("%c) %d bytes", letter, h.Size))
		fillBlock(grid, a.Size(), blockOff, h.Size, string(letter), allocColor)
	}

	var sb strings.Builder
	for y := 0; y < gridHeight; y++ {
		for x := 0; x < gridWidth; x++ {
			sb.WriteString(grid[y][x])
		}
		sb.WriteByte('\n')
	}

	sb.WriteString(freeFG.Sprintf("%-32s", "Free"))
	if len(allocSizes) > 0 {
		sb.WriteString(allocFG.Sprint("Allocated"))
	}
	sb.WriteByte('\n')

	max := len(freeSizes)
	if len(allocSizes) > max {
		max = len(allocSizes)
	}
	for i := 0; i < max; i++ {
		var f, al string
		if i < len(freeSizes) {
			f = freeSizes[i]
		}
		if i < len(allocSizes) {
			al = allocSizes[i]
		}
		fmt.Fprintf(&sb, "%-32s%s\n", f, al)
	}

	return sb.String(), nil
}

func newGrid() [][]string {
	g := make([][]string, gridHeight)
	for y := 0; y < gridHeight; y++ {
		g[y] = make([]string, gridWidth)
		for x := 0; x < gridWidth; x++ {
			g[y][x] = "  "
		}
	}
	return g
}

// fillBlock paints the cells belonging to the block at [offset,
// offset+size) in arenaSize-space, drawing the label in the top-left
// cell, a left border down the leftmost column, and a bottom border
// along the bottommost row.
func fillBlock(grid [][]string, arenaSize uint32, offset, size uint32, label string, c *color.Color) {
	start := offsetToPoint(int(offset), int(arenaSize), false)
	end := offsetToPoint(int(offset+size), int(arenaSize), true)

	for y := start.y; y < end.y; y++ {
		for x := start.x; x < end.x; x++ {
			var text string
			switch {
			case x == start.x && y == start.y:
				text = "|" + label
				if len(text) < 2 {
					text += " "
				}
				text = text[:2]
			case x == start.x && y == end.y-1:
				text = "|_"
			case y == end.y-1:
				text = "__"
			case x == start.x:
				text = "| "
			default:
				text = "  "
			}
			grid[y][x] = c.Sprint(text)
		}
	}
}

// offsetToPoint converts a byte offset into arena-space into a grid
// coordinate, alternating which axis each size-bit contributes to —
// the same bit-interleaved (Z-order-like) walk the original C
// implementation used, ported algorithm-for-algorithm rather than
// line-for-line.
func offsetToPoint(offset, size int, isEnd bool) point {
	pot := [2]int{gridWidth, gridHeight}
	crd := [2]int{0, 0}
	sign := 1
	inY := 0

	if isEnd {
		offset = size - offset
		crd[0] = gridWidth
		crd[1] = gridHeight
		sign = -1
	}

	for curr := size >> 1; curr != 0; curr >>= 1 {
		pot[inY] >>= 1
		if curr&offset != 0 {
			crd[inY] += pot[inY] * sign
		}
		inY = 1 - inY
	}

	return point{x: crd[0], y: crd[1]}
}
