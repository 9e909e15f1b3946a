package kaio

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrPoolFull is returned by Pool.Alloc when every slot is occupied. The
// attempted value stays with the caller, uncommitted.
var ErrPoolFull = errors.New("kaio: pool full")

// Pool is a fixed-capacity slot arena with the freelist threaded through
// the free slots themselves, so Alloc and Free are O(1) with no auxiliary
// storage. Indices are stable for the lifetime of an allocation, which
// makes them cheap correlation tokens: store the index in Iocb.Data and the
// kernel echoes it back in IOEvent.Data, avoiding a hash lookup keyed by
// descriptor address.
//
// That index-as-token scheme is the canonical way to recover a slot from a
// completion. FreePtr exists for engines that key on IOEvent.Obj (the
// originating descriptor's address) instead; the two schemes must not be
// mixed on one pool.
//
// Pool holds no locks. A multi-goroutine consumer serializes access per
// instance, or shards one pool per worker.
type Pool[T any] struct {
	slots []slot[T]
	used  int
	next  int // freelist head; len(slots) when exhausted
}

// slot is either Free, in which case next links to the following free slot,
// or Occupied, in which case val holds the caller's value.
type slot[T any] struct {
	val      T
	next     int
	occupied bool
}

// NewPool creates a pool of capacity slots, all free, chained in index
// order 0, 1, ..., capacity-1 with the allocation cursor at slot 0.
// capacity must be positive.
func NewPool[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("kaio: pool capacity %d must be positive", capacity))
	}
	slots := make([]slot[T], capacity)
	for i := range slots {
		slots[i].next = i + 1
	}
	return &Pool[T]{slots: slots}
}

// Alloc claims a free slot for v and returns its index. When the freelist
// is exhausted it returns ErrPoolFull; the caller still owns v and can
// retry after releasing a slot.
func (p *Pool[T]) Alloc(v T) (int, error) {
	idx := p.next
	if idx >= len(p.slots) {
		return 0, ErrPoolFull
	}
	s := &p.slots[idx]
	if s.occupied {
		panic(fmt.Sprintf("kaio: freelist points at occupied slot %d", idx))
	}
	p.next = s.next
	s.val = v
	s.occupied = true
	p.used++
	return idx, nil
}

// Free releases the occupied slot idx and returns the value it held. The
// freed slot becomes the freelist head, so it is the next one Alloc hands
// out (LIFO reuse keeps hot slots hot). Freeing a slot that is not occupied
// is a caller bug and panics.
func (p *Pool[T]) Free(idx int) T {
	if idx < 0 || idx >= len(p.slots) {
		panic(fmt.Sprintf("kaio: free of out-of-range index %d", idx))
	}
	s := &p.slots[idx]
	if !s.occupied {
		panic(fmt.Sprintf("kaio: free of free slot %d", idx))
	}
	v := s.val
	var zero T
	s.val = zero
	s.occupied = false
	s.next = p.next
	p.next = idx
	p.used--
	return v
}

// FreePtr releases the slot whose stored value lives at ptr, recovering the
// index from the byte distance to the pool's backing array. ptr must have
// been obtained from this pool (via At) and still name an occupied slot;
// anything else is undefined, though distances that land outside the arena
// panic like any bad Free.
func (p *Pool[T]) FreePtr(ptr unsafe.Pointer) T {
	base := uintptr(unsafe.Pointer(&p.slots[0]))
	off := uintptr(ptr) - base
	// division rounds down, so a pointer into the middle of a slot still
	// lands on that slot's index
	idx := int(off / unsafe.Sizeof(p.slots[0]))
	if off > uintptr(len(p.slots))*unsafe.Sizeof(p.slots[0]) {
		idx = -1
	}
	return p.Free(idx)
}

// At returns a pointer to the value in the occupied slot idx. Addressing a
// free slot is a caller bug and panics.
func (p *Pool[T]) At(idx int) *T {
	if idx < 0 || idx >= len(p.slots) {
		panic(fmt.Sprintf("kaio: access of out-of-range index %d", idx))
	}
	s := &p.slots[idx]
	if !s.occupied {
		panic(fmt.Sprintf("kaio: access of free slot %d", idx))
	}
	return &s.val
}

// Set replaces the value in the occupied slot idx.
func (p *Pool[T]) Set(idx int, v T) {
	*p.At(idx) = v
}

// Limit returns the pool capacity fixed at creation.
func (p *Pool[T]) Limit() int { return len(p.slots) }

// Used returns the number of occupied slots.
func (p *Pool[T]) Used() int { return p.used }

// Avail returns the number of free slots.
func (p *Pool[T]) Avail() int { return len(p.slots) - p.used }
