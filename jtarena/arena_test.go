package jtarena_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-substrate/json-tree/jtarena"
	"github.com/lattice-substrate/json-tree/jterr"
)

func TestAllocBasics(t *testing.T) {
	a := jtarena.New(64)

	first, err := a.Alloc(8)
	require.NoError(t, err)
	require.Len(t, first, 8)

	second, err := a.Alloc(8)
	require.NoError(t, err)
	require.Len(t, second, 8)

	copy(first, "AAAAAAAA")
	copy(second, "BBBBBBBB")
	assert.Equal(t, "AAAAAAAA", string(first), "allocations must not alias")
	assert.Equal(t, "BBBBBBBB", string(second))
	assert.Equal(t, 16, a.Used())
}

func TestAllocZeroBytes(t *testing.T) {
	a := jtarena.New(0)
	buf, err := a.Alloc(0)
	require.NoError(t, err)
	assert.NotNil(t, buf)
	assert.Empty(t, buf)
}

func TestAllocZeroesReusedStorage(t *testing.T) {
	a := jtarena.New(32)
	buf, err := a.Alloc(8)
	require.NoError(t, err)
	copy(buf, "garbage!")

	a.Reset()
	fresh, err := a.Alloc(8)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), fresh, "reused chunk storage must come back zeroed")
}

func TestResizeTailGrowInPlacePreservesData(t *testing.T) {
	a := jtarena.New(1024)
	buf, err := a.Alloc(16)
	require.NoError(t, err)
	copy(buf, "0123456789abcdef")

	grown, err := a.ResizeTail(buf, 32)
	require.NoError(t, err)
	require.Len(t, grown, 32)
	assert.Equal(t, "0123456789abcdef", string(grown[:16]),
		"tail growth must preserve previously written bytes")
}

func TestResizeTailCopyPathPreservesData(t *testing.T) {
	// A tiny chunk forces the grow to overflow the current chunk and copy.
	a := jtarena.New(16)
	buf, err := a.Alloc(16)
	require.NoError(t, err)
	copy(buf, "0123456789abcdef")

	grown, err := a.ResizeTail(buf, 64)
	require.NoError(t, err)
	require.Len(t, grown, 64)
	assert.Equal(t, "0123456789abcdef", string(grown[:16]),
		"copying growth must preserve previously written bytes")
}

func TestResizeTailShrink(t *testing.T) {
	a := jtarena.New(64)
	buf, err := a.Alloc(16)
	require.NoError(t, err)
	copy(buf, "hello, worldXXXX")

	shrunk, err := a.ResizeTail(buf, 12)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(shrunk))
	assert.Equal(t, 12, a.Used())

	// The freed tail is handed out again by the next allocation.
	next, err := a.Alloc(4)
	require.NoError(t, err)
	require.Len(t, next, 4)
	assert.Equal(t, 16, a.Used())
}

func TestResizeTailRepeatedGrowth(t *testing.T) {
	// The parser's string reader doubles in a loop; data written before
	// every resize must survive all of them.
	a := jtarena.New(0)
	buf, err := a.Alloc(16)
	require.NoError(t, err)

	written := 0
	for size := 16; size <= 4096; size *= 2 {
		for ; written < size; written++ {
			buf[written] = byte('a' + written%26)
		}
		buf, err = a.ResizeTail(buf, size*2)
		require.NoError(t, err)
	}
	for i := 0; i < written; i++ {
		require.Equal(t, byte('a'+i%26), buf[i], "byte %d corrupted by growth", i)
	}
}

func TestResizeTailNonTailPanics(t *testing.T) {
	a := jtarena.New(64)
	first, err := a.Alloc(8)
	require.NoError(t, err)
	_, err = a.Alloc(8)
	require.NoError(t, err)

	assert.Panics(t, func() { a.ResizeTail(first, 16) },
		"resizing anything but the most recent allocation is a contract violation")
}

func TestLimitExceeded(t *testing.T) {
	a := jtarena.NewWithLimit(0, 32)

	_, err := a.Alloc(16)
	require.NoError(t, err)

	_, err = a.Alloc(32)
	require.Error(t, err)
	var je *jterr.Error
	require.True(t, errors.As(err, &je))
	assert.Equal(t, jterr.AllocFailure, je.Class)

	// The failed allocation must not consume budget.
	_, err = a.Alloc(16)
	assert.NoError(t, err)
}

func TestLimitAppliesToTailGrowth(t *testing.T) {
	a := jtarena.NewWithLimit(0, 32)
	buf, err := a.Alloc(16)
	require.NoError(t, err)

	_, err = a.ResizeTail(buf, 64)
	require.Error(t, err)
	var je *jterr.Error
	require.True(t, errors.As(err, &je))
	assert.Equal(t, jterr.AllocFailure, je.Class)
}

func TestReset(t *testing.T) {
	a := jtarena.New(16)
	for i := 0; i < 10; i++ {
		_, err := a.Alloc(16)
		require.NoError(t, err)
	}
	require.Equal(t, 160, a.Used())

	a.Reset()
	assert.Equal(t, 0, a.Used())

	buf, err := a.Alloc(8)
	require.NoError(t, err)
	assert.Len(t, buf, 8)
}

func TestAllocationsDoNotMoveAcrossChunks(t *testing.T) {
	a := jtarena.New(16)
	first, err := a.Alloc(16)
	require.NoError(t, err)
	copy(first, "0123456789abcdef")

	// Force several new chunks.
	for i := 0; i < 8; i++ {
		_, err := a.Alloc(16)
		require.NoError(t, err)
	}
	assert.Equal(t, "0123456789abcdef", string(first),
		"issued storage must stay put when the arena grows")
}
