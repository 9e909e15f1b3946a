package kaio

import (
	"bytes"
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/go-kaio/internal/constants"
)

func TestAlignedRounding(t *testing.T) {
	tests := []struct {
		size  int
		align int
		want  int
	}{
		{16, 16, 16},
		{10, 16, 16},
		{17, 16, 32},
		{1, 1, 1},
		{0, 512, 0},
		{4096, constants.DefaultAlignment, 4096},
		{4097, constants.DefaultAlignment, 4608},
	}

	for _, tt := range tests {
		b, err := AllocUninit(tt.size, tt.align)
		require.NoError(t, err)
		require.Equal(t, tt.want, b.Len(), "AllocUninit(%d, %d)", tt.size, tt.align)
		require.Equal(t, 0, b.Valid())
		require.Equal(t, tt.align, b.Align())
		require.NoError(t, b.Close())
	}
}

func TestAlignedAddress(t *testing.T) {
	for _, align := range []int{1, 16, 512, 4096} {
		b, err := AllocUninit(100, align)
		require.NoError(t, err)
		if b.Len() > 0 {
			addr := uintptr(unsafe.Pointer(&b.FillView()[0]))
			require.Zero(t, addr%uintptr(align), "align=%d", align)
		}
		require.NoError(t, b.Close())
	}
}

func TestAllocZeroed(t *testing.T) {
	b, err := AllocZeroed(100, 16)
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, 112, b.Len())
	require.Equal(t, b.Len(), b.Valid(), "zeroed buffer is fully valid")
	require.Equal(t, make([]byte, 112), b.DrainView())
}

func TestAllocBytes(t *testing.T) {
	data := []byte("direct i/o payload")
	b, err := AllocBytes(data, 16)
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, 32, b.Len())
	require.Equal(t, b.Len(), b.Valid())
	view := b.DrainView()
	require.Equal(t, data, view[:len(data)])
	// rounding padding is zero-filled
	require.Equal(t, make([]byte, 32-len(data)), view[len(data):])
}

func TestFilledFrontier(t *testing.T) {
	b, err := AllocUninit(2048, 512)
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, 0, b.Valid())

	// fill from the start
	b.Filled(0, 512)
	require.Equal(t, 512, b.Valid())

	// a fill into a gap past the frontier validates nothing
	b.Filled(1024, 512)
	require.Equal(t, 512, b.Valid())

	// overlapping the frontier extends it
	b.Filled(256, 512)
	require.Equal(t, 768, b.Valid())

	// entirely inside the valid prefix changes nothing
	b.Filled(0, 100)
	require.Equal(t, 768, b.Valid())

	// contiguous with the frontier
	b.Filled(768, 1280)
	require.Equal(t, 2048, b.Valid())

	// extending past the allocation is a caller bug
	c, err := AllocUninit(512, 512)
	require.NoError(t, err)
	defer c.Close()
	require.Panics(t, func() { c.Filled(0, 513) })
}

func TestClone(t *testing.T) {
	b, err := AllocUninit(1024, 512)
	require.NoError(t, err)
	defer b.Close()

	view := b.FillView()
	for i := 0; i < 700; i++ {
		view[i] = byte(i)
	}
	b.Filled(0, 700)

	c := b.Clone()
	defer c.Close()

	require.Equal(t, b.Len(), c.Len())
	require.Equal(t, b.Align(), c.Align())
	require.Equal(t, 700, c.Valid())
	require.True(t, bytes.Equal(b.DrainView(), c.DrainView()))

	// the clone owns its memory
	view[0] = 0xff
	require.NotEqual(t, view[0], c.DrainView()[0])
}

func TestCloseTwice(t *testing.T) {
	b, err := AllocZeroed(64, 16)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "second close is a no-op")
	require.Equal(t, 0, b.Len())
	require.Equal(t, 0, b.Valid())
}

func TestBadAlign(t *testing.T) {
	require.Panics(t, func() { AllocUninit(16, 0) })
	require.Panics(t, func() { AllocUninit(16, 3) })
	require.Panics(t, func() { AllocUninit(16, -8) })
	require.Panics(t, func() { AllocZeroed(16, 24) })
	require.Panics(t, func() { AllocBytes([]byte("x"), 7) })
}

func TestMmapAllocator(t *testing.T) {
	page := os.Getpagesize()

	b, err := AllocUninitIn(MmapAllocator{}, 2*page, page)
	require.NoError(t, err)

	addr := uintptr(unsafe.Pointer(&b.FillView()[0]))
	require.Zero(t, addr%uintptr(page))
	require.Equal(t, 2*page, b.Len())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	// alignment beyond what mmap can promise is an allocator error, not a
	// panic
	_, err = AllocUninitIn(MmapAllocator{}, page, 4*page)
	require.Error(t, err)
	require.True(t, IsCode(err, ErrCodeInvalidParameters))
}
