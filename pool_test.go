package kaio

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestPoolAllocToCapacity(t *testing.T) {
	p := NewPool[int](4)

	require.Equal(t, 4, p.Limit())
	require.Equal(t, 0, p.Used())
	require.Equal(t, 4, p.Avail())

	for i := 0; i < 4; i++ {
		idx, err := p.Alloc(i)
		require.NoError(t, err)
		require.Equal(t, i, idx, "fresh pool hands out slots in index order")
		require.Equal(t, i+1, p.Used())
		require.Equal(t, i, *p.At(idx))
	}

	require.Equal(t, 0, p.Avail())
	_, err := p.Alloc(10)
	require.ErrorIs(t, err, ErrPoolFull)
	require.Equal(t, 0, p.Avail())
	require.Equal(t, 4, p.Used())
}

func TestPoolLIFOReuse(t *testing.T) {
	p := NewPool[int](3)

	idx, err := p.Alloc(1)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	require.Equal(t, 1, p.Free(0))

	// the just-freed slot is the next one handed out
	idx, err = p.Alloc(2)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, 2, p.Free(0))
}

// Sustained cycling at full capacity: every allocation failure is resolved
// by freeing the oldest slot, and occupancy never drops below capacity-1.
func TestPoolCycling(t *testing.T) {
	p := NewPool[int](4)
	var live []int

	for i := 0; i < 20; i++ {
		idx, err := p.Alloc(i)
		require.NoError(t, err)
		require.Less(t, idx, 4)
		require.Equal(t, i, *p.At(idx))

		live = append(live, idx)

		if p.Avail() == 0 {
			require.Equal(t, 4, p.Used())
			oldest := live[0]
			live = live[1:]
			p.Free(oldest)
			require.Equal(t, 1, p.Avail())
		}
	}
}

func TestPoolFreePtr(t *testing.T) {
	p := NewPool[int](4)
	var live []unsafe.Pointer

	for i := 0; i < 20; i++ {
		idx, err := p.Alloc(i)
		require.NoError(t, err)
		require.Less(t, idx, 4)

		live = append(live, unsafe.Pointer(p.At(idx)))

		if p.Avail() == 0 {
			oldest := live[0]
			live = live[1:]
			p.FreePtr(oldest)
			require.Equal(t, 1, p.Avail())
		}
	}
}

// The address of a just-allocated slot's value recovers exactly the index
// the matching Alloc returned.
func TestPoolFreePtrMatchesIndex(t *testing.T) {
	p := NewPool[string](8)

	idx, err := p.Alloc("first")
	require.NoError(t, err)
	ptr := unsafe.Pointer(p.At(idx))

	require.Equal(t, "first", p.FreePtr(ptr))

	// LIFO: the slot FreePtr released is the next one allocated, proving it
	// resolved to the same index
	again, err := p.Alloc("second")
	require.NoError(t, err)
	require.Equal(t, idx, again)
}

func TestPoolBadFree(t *testing.T) {
	p := NewPool[int](4)

	idx, err := p.Alloc(0)
	require.NoError(t, err)

	// adjacent free slot
	require.Panics(t, func() { p.Free(idx + 1) })
	// double free
	p.Free(idx)
	require.Panics(t, func() { p.Free(idx) })
	// out of range
	require.Panics(t, func() { p.Free(-1) })
	require.Panics(t, func() { p.Free(4) })
}

func TestPoolBadIndex(t *testing.T) {
	p := NewPool[int](4)

	require.Panics(t, func() { p.At(0) })
	require.Panics(t, func() { p.Set(0, 1) })

	idx, err := p.Alloc(0)
	require.NoError(t, err)

	// neighbors of an occupied slot are still free
	require.Panics(t, func() { p.At(idx + 1) })
	require.Panics(t, func() { p.Set(idx+1, 1) })
}

func TestPoolBadPtr(t *testing.T) {
	p := NewPool[int](4)

	_, err := p.Alloc(0)
	require.NoError(t, err)

	var foreign int
	require.Panics(t, func() { p.FreePtr(unsafe.Pointer(&foreign)) })
}

func TestPoolZeroCapacity(t *testing.T) {
	require.Panics(t, func() { NewPool[int](0) })
	require.Panics(t, func() { NewPool[int](-1) })
}

func TestPoolSet(t *testing.T) {
	p := NewPool[string](2)

	idx, err := p.Alloc("a")
	require.NoError(t, err)

	p.Set(idx, "b")
	require.Equal(t, "b", *p.At(idx))
	require.Equal(t, "b", p.Free(idx))
}
