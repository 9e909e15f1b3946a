//go:build !linux

package kaio

import "time"

// The io_setup syscall family is Linux-only. These stubs keep the package
// compiling elsewhere; every kernel-touching call reports
// ErrCodeKernelNotSupported at runtime.

// Config configures a kernel AIO context.
type Config struct {
	MaxEvents int
	Metrics   *Metrics
}

// IOContext is an opaque per-process handle to a kernel-side AIO completion
// queue. Only the Linux implementation is functional.
type IOContext struct {
	maxEvents int
}

func errUnsupported(op string) *Error {
	return NewError(op, ErrCodeKernelNotSupported, "native aio requires linux")
}

// NewIOContext always fails off Linux.
func NewIOContext(cfg Config) (*IOContext, error) {
	return nil, errUnsupported("IO_SETUP")
}

// MaxEvents returns the queue depth fixed at creation.
func (c *IOContext) MaxEvents() int { return c.maxEvents }

// Destroy always fails off Linux.
func (c *IOContext) Destroy() error {
	return errUnsupported("IO_DESTROY")
}

// Submit always fails off Linux.
func (c *IOContext) Submit(batch []*Iocb) (int, error) {
	return 0, errUnsupported("IO_SUBMIT")
}

// Cancel always fails off Linux.
func (c *IOContext) Cancel(icb *Iocb, evt *IOEvent) error {
	return errUnsupported("IO_CANCEL")
}

// GetEvents always fails off Linux.
func (c *IOContext) GetEvents(minnr int, events []IOEvent, timeout *time.Duration) (int, error) {
	return 0, errUnsupported("IO_GETEVENTS")
}

// NewEventFD always fails off Linux.
func NewEventFD() (int, error) {
	return -1, errUnsupported("EVENTFD")
}
