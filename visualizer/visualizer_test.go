package visualizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladmem/vlad/arena"
	"github.com/vladmem/vlad/block"
)

func setHeader(a *arena.Arena, offset, size uint32, free bool) {
	h := block.At(a.Ptr(offset))
	h.Size = size
	if free {
		h.Magic = block.Free
	} else {
		h.Magic = block.Alloc
	}
}

func TestOffsetToPointCornersOfWholeArena(t *testing.T) {
	start := offsetToPoint(0, 1024, false)
	assert.Equal(t, point{0, 0}, start)

	end := offsetToPoint(1024, 1024, true)
	assert.Equal(t, point{gridWidth, gridHeight}, end)
}

func TestOffsetToPointMidpointSplitsOnFirstAxis(t *testing.T) {
	half := offsetToPoint(512, 1024, false)
	// the first bit walked alternates the x axis; half the arena should
	// land at the grid's horizontal midpoint with y untouched.
	assert.Equal(t, gridWidth/2, half.x)
	assert.Equal(t, 0, half.y)
}

func TestRenderSingleFreeBlockListsOnlyFreeSize(t *testing.T) {
	a, err := arena.New(1024)
	require.NoError(t, err)
	setHeader(a, 0, 1024, true)

	out, err := Render(a, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Free")
	assert.Contains(t, out, "1) 1024 bytes")
	assert.NotContains(t, out, "Allocated")
}

func TestRenderListsFreeAndAllocatedSizesSeparately(t *testing.T) {
	a, err := arena.New(1024)
	require.NoError(t, err)
	setHeader(a, 0, 256, false)
	setHeader(a, 256, 256, true)
	setHeader(a, 512, 512, true)

	payload := a.Bytes()[block.HeaderSize : block.HeaderSize+200]

	out, err := Render(a, Labels{'a': payload})
	require.NoError(t, err)
	assert.Contains(t, out, "Allocated")
	assert.Contains(t, out, "a) 256 bytes")
	assert.Contains(t, out, "1) 256 bytes")
	assert.Contains(t, out, "2) 512 bytes")
}

func TestRenderIgnoresUnknownOrEmptyLabels(t *testing.T) {
	a, err := arena.New(1024)
	require.NoError(t, err)
	setHeader(a, 0, 1024, true)

	unknown := a.Bytes()[block.HeaderSize : block.HeaderSize+8]
	out, err := Render(a, Labels{'z': nil, 'q': []byte{}, '#': unknown})
	require.NoError(t, err)
	assert.NotContains(t, out, "Allocated")
	lineCount := strings.Count(out, "\n")
	assert.GreaterOrEqual(t, lineCount, gridHeight)
}

func TestRenderRejectsOversizeArena(t *testing.T) {
	a, err := arena.New(MaxSize * 2)
	require.NoError(t, err)

	_, err = Render(a, nil)
	assert.Error(t, err)
}
