//go:build linux

package kaio

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-kaio/internal/constants"
	"github.com/ehrlich-b/go-kaio/internal/logging"
)

// Config configures a kernel AIO context.
type Config struct {
	// MaxEvents bounds concurrent in-flight requests for the queue. It is
	// fixed at creation and never altered afterward. Zero selects
	// constants.DefaultQueueDepth; negative values and values above
	// constants.MaxQueueDepth are invalid.
	MaxEvents int

	// Metrics, when non-nil, receives submit/harvest/cancel counters.
	Metrics *Metrics
}

// IOContext is an opaque per-process handle to a kernel-side AIO completion
// queue. The struct holds no locks; the usual deployment submits from one
// goroutine and harvests from another, which the kernel supports directly.
type IOContext struct {
	id        uint64 // aio_context_t
	maxEvents int
	metrics   *Metrics
	log       *logging.Logger
}

// NewIOContext creates a kernel queue with room for cfg.MaxEvents
// concurrent requests via io_setup(2). Failures surface as *Error carrying
// the OS errno; EAGAIN usually means fs.aio-max-nr is exhausted.
func NewIOContext(cfg Config) (*IOContext, error) {
	log := logging.Default()
	if cfg.MaxEvents == 0 {
		cfg.MaxEvents = constants.DefaultQueueDepth
	}
	if cfg.MaxEvents < 0 || cfg.MaxEvents > constants.MaxQueueDepth {
		return nil, NewError("IO_SETUP", ErrCodeInvalidParameters,
			"max events out of range")
	}

	var id uint64
	_, _, errno := unix.Syscall(unix.SYS_IO_SETUP, uintptr(cfg.MaxEvents), uintptr(unsafe.Pointer(&id)), 0)
	if errno != 0 {
		log.Error("io_setup failed", "max_events", cfg.MaxEvents, "errno", int(errno))
		return nil, WrapErrno("IO_SETUP", errno)
	}

	log.Debug("created aio context", "max_events", cfg.MaxEvents)
	return &IOContext{
		id:        id,
		maxEvents: cfg.MaxEvents,
		metrics:   cfg.Metrics,
		log:       log,
	}, nil
}

// MaxEvents returns the queue depth fixed at creation.
func (c *IOContext) MaxEvents() int { return c.maxEvents }

// Destroy releases the kernel-side queue via io_destroy(2), canceling what
// it can and waiting for what it cannot. The context must not be used
// afterward.
func (c *IOContext) Destroy() error {
	_, _, errno := unix.Syscall(unix.SYS_IO_DESTROY, uintptr(c.id), 0, 0)
	if errno != 0 {
		return WrapErrno("IO_DESTROY", errno)
	}
	c.log.Debug("destroyed aio context")
	c.id = 0
	return nil
}

// Submit passes batch to io_submit(2) and returns how many descriptors the
// kernel accepted, in order from the front. An accepted count below
// len(batch) is deliberate backpressure, not an error: the caller retries
// the unaccepted remainder. Each descriptor, and any buffer or iovec array
// it points to, must stay alive and unmodified until its completion is
// harvested.
func (c *IOContext) Submit(batch []*Iocb) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	n, _, errno := unix.Syscall(unix.SYS_IO_SUBMIT, uintptr(c.id), uintptr(len(batch)), uintptr(unsafe.Pointer(&batch[0])))
	if errno != 0 {
		if c.metrics != nil {
			c.metrics.SubmitErrors.Add(1)
		}
		return 0, WrapErrno("IO_SUBMIT", errno)
	}

	accepted := int(n)
	if c.metrics != nil {
		c.metrics.SubmitCalls.Add(1)
		c.metrics.Submitted.Add(uint64(accepted))
		if accepted < len(batch) {
			c.metrics.PartialSubmits.Add(1)
		}
	}
	if accepted < len(batch) {
		c.log.Debug("partial submit", "accepted", accepted, "batch", len(batch))
	}
	return accepted, nil
}

// Cancel asks the kernel to cancel icb via io_cancel(2), writing the
// cancellation completion to evt on success. Best effort: most in-flight
// disk operations cannot be canceled, and a completion for an allegedly
// canceled request may still arrive through GetEvents and must be handled
// as a normal completion.
func (c *IOContext) Cancel(icb *Iocb, evt *IOEvent) error {
	_, _, errno := unix.Syscall(unix.SYS_IO_CANCEL, uintptr(c.id), uintptr(unsafe.Pointer(icb)), uintptr(unsafe.Pointer(evt)))
	if errno != 0 {
		if c.metrics != nil {
			c.metrics.CancelErrors.Add(1)
		}
		return WrapErrno("IO_CANCEL", errno)
	}
	if c.metrics != nil {
		c.metrics.Cancels.Add(1)
	}
	return nil
}

// GetEvents harvests up to len(events) completions via io_getevents(2),
// blocking until at least minnr are available or timeout elapses. A nil
// timeout blocks indefinitely; minnr == 0 makes the call a non-blocking
// poll. The delivered count is in [0, len(events)] and falls below minnr
// only on timeout.
func (c *IOContext) GetEvents(minnr int, events []IOEvent, timeout *time.Duration) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	var ts *unix.Timespec
	if timeout != nil {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	start := time.Now()
	n, _, errno := unix.Syscall6(unix.SYS_IO_GETEVENTS, uintptr(c.id), uintptr(minnr), uintptr(len(events)),
		uintptr(unsafe.Pointer(&events[0])), uintptr(unsafe.Pointer(ts)), 0)
	if errno != 0 {
		if c.metrics != nil {
			c.metrics.HarvestErrors.Add(1)
		}
		return 0, WrapErrno("IO_GETEVENTS", errno)
	}

	if c.metrics != nil {
		c.metrics.HarvestCalls.Add(1)
		c.metrics.Completions.Add(uint64(n))
		c.metrics.ObserveHarvestWait(time.Since(start))
	}
	return int(n), nil
}

// NewEventFD returns an eventfd suitable for Iocb.SetEventFD completion
// signaling. The caller closes it with unix.Close when done.
func NewEventFD() (int, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return -1, WrapErrno("EVENTFD", errno)
		}
		return -1, err
	}
	return fd, nil
}
