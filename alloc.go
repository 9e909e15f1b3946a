package kaio

import (
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Allocator provides aligned backing memory for AlignedBuffer. Alignment is
// an external capability rather than something this package reimplements;
// the two implementations below cover the common cases and an engine with a
// slab or hugepage scheme can plug in its own.
type Allocator interface {
	// Alloc returns a block of exactly size bytes whose first byte sits at
	// an address that is a multiple of align. align is a power of two.
	Alloc(size, align int) ([]byte, error)

	// Free releases a block previously returned by Alloc. Blocks are freed
	// exactly once.
	Free(block []byte) error
}

// DefaultAllocator backs the package-level Alloc* constructors.
var DefaultAllocator Allocator = HeapAllocator{}

// HeapAllocator satisfies alignment by over-allocating from the Go heap and
// slicing at the first aligned offset. The returned block pins the whole
// over-allocation, so Free is a no-op and the garbage collector reclaims it.
type HeapAllocator struct{}

// Alloc implements Allocator.
func (HeapAllocator) Alloc(size, align int) ([]byte, error) {
	raw := make([]byte, size+align)
	off := 0
	if r := int(uintptr(unsafe.Pointer(unsafe.SliceData(raw))) & uintptr(align-1)); r != 0 {
		off = align - r
	}
	return raw[off : off+size : off+size], nil
}

// Free implements Allocator.
func (HeapAllocator) Free([]byte) error { return nil }

// MmapAllocator hands out anonymous private mappings. mmap returns
// page-aligned memory, so align must not exceed the page size; in exchange
// blocks live outside the Go heap and are released eagerly by Free.
type MmapAllocator struct{}

// Alloc implements Allocator.
func (MmapAllocator) Alloc(size, align int) ([]byte, error) {
	if align > os.Getpagesize() {
		return nil, NewError("MMAP", ErrCodeInvalidParameters, "alignment exceeds page size")
	}
	if size == 0 {
		return []byte{}, nil
	}
	block, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return nil, WrapErrno("MMAP", errno)
		}
		return nil, &Error{Op: "MMAP", Code: ErrCodeInsufficientMemory, Msg: err.Error(), Inner: err}
	}
	return block, nil
}

// Free implements Allocator.
func (MmapAllocator) Free(block []byte) error {
	if len(block) == 0 {
		return nil
	}
	if err := unix.Munmap(block); err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return WrapErrno("MUNMAP", errno)
		}
		return err
	}
	return nil
}
