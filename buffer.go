package kaio

// The kernel-facing layer does not care what a buffer is, only what it can
// do. Two independent capabilities cover both transfer directions; a type
// may implement either, both, or neither, and wrapper types forward them by
// ordinary struct embedding.

// Fillable is implemented by byte containers that an inbound (read)
// operation can fill.
type Fillable interface {
	// FillView returns the whole writable region. Content past the
	// container's valid length must not be assumed meaningful.
	FillView() []byte

	// Filled reports that the operation wrote the sub-range [base, base+n),
	// letting the container advance its notion of validity.
	Filled(base, n int)
}

// Drainable is implemented by byte containers that supply the source bytes
// for an outbound (write) operation.
type Drainable interface {
	// DrainView returns the initialized bytes to write. The slice aliases
	// the container and must be treated as read-only.
	DrainView() []byte
}

// Bytes adapts a plain contiguous slice to both capabilities. The whole
// slice is always considered valid, so Filled has nothing to track. A
// growable container built on append works the same way: whatever length
// it currently has is its valid region.
type Bytes []byte

// FillView implements Fillable.
func (b Bytes) FillView() []byte { return b }

// Filled implements Fillable. A plain slice has no validity frontier.
func (b Bytes) Filled(base, n int) {}

// DrainView implements Drainable.
func (b Bytes) DrainView() []byte { return b }

var (
	_ Fillable  = Bytes(nil)
	_ Drainable = Bytes(nil)
	_ Fillable  = (*AlignedBuffer)(nil)
	_ Drainable = (*AlignedBuffer)(nil)
)
