// Package kaio is the foundation layer for asynchronous, unbuffered
// (O_DIRECT) disk I/O on Linux. It provides exact Go mirrors of the kernel
// AIO ABI (struct iocb and struct io_event) together with thin wrappers over
// the io_setup/io_submit/io_getevents syscall family, aligned transfer
// buffers that track how much of their contents is meaningful, and a
// fixed-capacity slot pool whose integer handles double as completion
// correlation tokens.
//
// A consuming engine allocates an AlignedBuffer, claims a Pool slot for the
// pending request, stores the slot index in Iocb.Data, submits through an
// IOContext, and on harvest uses IOEvent.Data to release the slot and
// recover the buffer. The event loop that sequences those steps is the
// engine's business, not this package's.
package kaio
