package kaio

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// Error is a structured kernel-call failure carrying the failed operation
// and the underlying errno. Kernel call failures are the only recoverable
// error category in this package; contract violations (freeing a free pool
// slot, a non-power-of-two alignment) panic instead.
type Error struct {
	Op    string        // syscall that failed ("IO_SETUP", "IO_SUBMIT", ...)
	Code  ErrorCode     // high-level error category
	Errno syscall.Errno // kernel errno (0 if not applicable)
	Msg   string        // human-readable message
	Inner error         // wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("kaio: %s (%s)", msg, strings.Join(parts, " "))
	}
	return "kaio: " + msg
}

// Unwrap returns the wrapped error for errors.Is/As support. When no inner
// error was set the errno itself is exposed, so
// errors.Is(err, unix.EAGAIN) works on wrapped syscall failures.
func (e *Error) Unwrap() error {
	if e.Inner != nil {
		return e.Inner
	}
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}

// Is matches two structured errors by code.
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode represents high-level error categories
type ErrorCode string

const (
	ErrCodeInvalidParameters  ErrorCode = "invalid parameters"
	ErrCodeKernelNotSupported ErrorCode = "kernel does not support native aio"
	ErrCodeInsufficientMemory ErrorCode = "insufficient memory"
	ErrCodePermissionDenied   ErrorCode = "permission denied"
	ErrCodeQueueFull          ErrorCode = "kernel queue full"
	ErrCodeInterrupted        ErrorCode = "interrupted"
	ErrCodeBadDescriptor      ErrorCode = "bad file descriptor"
	ErrCodeTimeout            ErrorCode = "timeout"
	ErrCodeIOError            ErrorCode = "I/O error"
)

// NewError creates a new structured error
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{
		Op:   op,
		Code: code,
		Msg:  msg,
	}
}

// WrapErrno creates a structured error from a raw kernel errno
func WrapErrno(op string, errno syscall.Errno) *Error {
	return &Error{
		Op:    op,
		Code:  mapErrnoToCode(errno),
		Errno: errno,
		Msg:   errno.Error(),
	}
}

// mapErrnoToCode maps syscall errno to kaio error codes
func mapErrnoToCode(errno syscall.Errno) ErrorCode {
	switch errno {
	case syscall.EINVAL, syscall.E2BIG, syscall.EFAULT:
		return ErrCodeInvalidParameters
	case syscall.ENOSYS, syscall.EOPNOTSUPP:
		return ErrCodeKernelNotSupported
	case syscall.ENOMEM:
		return ErrCodeInsufficientMemory
	case syscall.EAGAIN:
		// io_setup: fs.aio-max-nr exceeded; io_submit: the queue is full
		return ErrCodeQueueFull
	case syscall.EPERM, syscall.EACCES:
		return ErrCodePermissionDenied
	case syscall.EINTR:
		return ErrCodeInterrupted
	case syscall.EBADF:
		return ErrCodeBadDescriptor
	case syscall.ETIMEDOUT:
		return ErrCodeTimeout
	default:
		return ErrCodeIOError
	}
}

// IsCode checks if an error matches a specific error code
func IsCode(err error, code ErrorCode) bool {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// IsErrno checks if an error matches a specific errno
func IsErrno(err error, errno syscall.Errno) bool {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Errno == errno
	}
	return false
}
