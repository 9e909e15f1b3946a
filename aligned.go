package kaio

import "fmt"

// AlignedBuffer owns a block of alignment-padded memory used as the transfer
// buffer for direct I/O. It carries two lengths: the allocated length, which
// is always a multiple of the alignment, and the valid length, the prefix
// known to hold meaningful bytes. Unbuffered storage I/O routinely returns
// short reads, so the two are tracked separately and valid <= allocated
// holds at all times.
//
// A buffer exclusively owns its backing memory; it moves freely between
// goroutines but concurrent use needs external synchronization.
type AlignedBuffer struct {
	block []byte // allocated region, len is a multiple of align
	alloc Allocator
	align int
	valid int
	freed bool
}

// AllocUninit allocates size bytes rounded up to the next multiple of align
// using the DefaultAllocator. The contents are unspecified and the valid
// length starts at zero. align must be a power of two greater than zero;
// violating that is a caller bug and panics. Allocation failure returns a
// nil buffer and an error, never a partial object.
func AllocUninit(size, align int) (*AlignedBuffer, error) {
	return AllocUninitIn(DefaultAllocator, size, align)
}

// AllocZeroed is AllocUninit with the whole region zero-filled and marked
// valid.
func AllocZeroed(size, align int) (*AlignedBuffer, error) {
	return AllocZeroedIn(DefaultAllocator, size, align)
}

// AllocBytes allocates enough aligned memory for data, copies it in,
// zero-fills the rounding padding, and marks the whole region valid.
func AllocBytes(data []byte, align int) (*AlignedBuffer, error) {
	return AllocBytesIn(DefaultAllocator, data, align)
}

// AllocUninitIn is AllocUninit against an explicit allocator.
func AllocUninitIn(a Allocator, size, align int) (*AlignedBuffer, error) {
	checkAlign(align)
	sz := (size + align - 1) &^ (align - 1)
	block, err := a.Alloc(sz, align)
	if err != nil {
		return nil, err
	}
	return &AlignedBuffer{block: block, alloc: a, align: align}, nil
}

// AllocZeroedIn is AllocZeroed against an explicit allocator.
func AllocZeroedIn(a Allocator, size, align int) (*AlignedBuffer, error) {
	b, err := AllocUninitIn(a, size, align)
	if err != nil {
		return nil, err
	}
	clear(b.block)
	b.valid = len(b.block)
	return b, nil
}

// AllocBytesIn is AllocBytes against an explicit allocator.
func AllocBytesIn(a Allocator, data []byte, align int) (*AlignedBuffer, error) {
	b, err := AllocUninitIn(a, len(data), align)
	if err != nil {
		return nil, err
	}
	n := copy(b.block, data)
	clear(b.block[n:])
	b.valid = len(b.block)
	return b, nil
}

// Len returns the allocated length, always a multiple of Align.
func (b *AlignedBuffer) Len() int { return len(b.block) }

// Valid returns the length of the initialized prefix.
func (b *AlignedBuffer) Valid() int { return b.valid }

// Align returns the buffer's alignment.
func (b *AlignedBuffer) Align() int { return b.align }

// FillView exposes the whole allocated region for an in-progress fill.
// Content past Valid must not be assumed meaningful until the fill reports
// it through Filled.
func (b *AlignedBuffer) FillView() []byte { return b.block }

// Filled records that a fill wrote [base, base+n). The valid length extends
// to base+n only when the range is contiguous with, or overlaps, the current
// valid prefix; a fill into a gap past the frontier does not retroactively
// validate the gap and leaves the valid length unchanged.
func (b *AlignedBuffer) Filled(base, n int) {
	if base <= b.valid && base+n > b.valid {
		if base+n > len(b.block) {
			panic(fmt.Sprintf("kaio: Filled range [%d,%d) extends past %d-byte allocation", base, base+n, len(b.block)))
		}
		b.valid = base + n
	}
}

// DrainView exposes the valid prefix as the source of an outbound write.
// The returned slice aliases the buffer and must be treated as read-only.
func (b *AlignedBuffer) DrainView() []byte { return b.block[:b.valid] }

// Clone allocates a new buffer with the same capacity, alignment, and
// allocator, deep-copying the valid prefix. Bytes past the valid length are
// unspecified and need not match the source. Allocation failure during a
// clone panics: there is no sensible partial outcome.
func (b *AlignedBuffer) Clone() *AlignedBuffer {
	nb, err := AllocUninitIn(b.alloc, len(b.block), b.align)
	if err != nil {
		panic("kaio: clone allocation failed: " + err.Error())
	}
	copy(nb.block, b.block[:b.valid])
	nb.valid = b.valid
	return nb
}

// Close releases the backing memory through the allocator. The first call
// frees the block; later calls are no-ops.
func (b *AlignedBuffer) Close() error {
	if b.freed {
		return nil
	}
	b.freed = true
	block := b.block
	b.block = nil
	b.valid = 0
	return b.alloc.Free(block)
}

func checkAlign(align int) {
	if align <= 0 || align&(align-1) != 0 {
		panic(fmt.Sprintf("kaio: alignment %d is not a positive power of two", align))
	}
}
