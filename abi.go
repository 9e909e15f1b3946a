package kaio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Opcodes for Iocb.OpCode, from linux/include/uapi/linux/aio_abi.h.
// This is kernel ABI; the values never change.
const (
	IOCmdPread  uint16 = 0
	IOCmdPwrite uint16 = 1
	IOCmdFsync  uint16 = 2
	IOCmdFdsync uint16 = 3
	// 4 was the experimental IOCB_CMD_PREADX and 5 is IOCB_CMD_POLL;
	// neither is used by this layer.
	IOCmdNoop    uint16 = 6
	IOCmdPreadv  uint16 = 7
	IOCmdPwritev uint16 = 8
)

// IOCBFlagResfd requests that the completion of a request be signaled
// through the eventfd in Iocb.ResFD instead of being discovered only by
// polling io_getevents.
const IOCBFlagResfd uint32 = 1 << 0

// Iocb must match the kernel's struct iocb exactly (64 bytes):
//
//	struct iocb {
//	  __u64 aio_data;       // echoed back in io_event.data
//	  __u32 aio_key;        // kernel internal (swapped with reserved1 on BE)
//	  __u32 aio_reserved1;
//	  __u16 aio_lio_opcode; // IOCB_CMD_*
//	  __s16 aio_reqprio;
//	  __u32 aio_fildes;
//	  __u64 aio_buf;        // PREAD/PWRITE: buffer; PREADV/PWRITEV: iovec array
//	  __u64 aio_nbytes;     // byte count or iovec entry count
//	  __s64 aio_offset;
//	  __u64 aio_reserved2;
//	  __u32 aio_flags;      // IOCB_FLAG_RESFD
//	  __u32 aio_resfd;      // eventfd when IOCB_FLAG_RESFD is set
//	};
//
// All fields are fixed width so the layout is identical on every platform.
// A submitted Iocb is immutable until its completion has been harvested.
type Iocb struct {
	Data uint64 // correlation token, echoed in IOEvent.Data

	Key       uint32 // kernel internal
	Reserved1 uint32

	OpCode  uint16
	ReqPrio int16
	FD      int32

	Buf    uint64 // buffer address, or iovec array address for vectored ops
	Bytes  uint64 // byte count, or iovec entry count for vectored ops
	Offset int64

	Reserved2 uint64

	Flags uint32
	ResFD int32
}

// Compile-time size check - must be exactly 64 bytes to match the kernel ABI
var _ [64]byte = [unsafe.Sizeof(Iocb{})]byte{}

// IOEvent must match the kernel's struct io_event exactly (32 bytes):
//
//	struct io_event {
//	  __u64 data; // iocb.aio_data of the completed request
//	  __u64 obj;  // address of the originating iocb
//	  __s64 res;  // bytes transferred, or -errno
//	  __s64 res2; // secondary result
//	};
//
// Events are produced in batches by io_getevents and consumed exactly once.
type IOEvent struct {
	Data uint64
	Obj  uint64
	Res  int64
	Res2 int64
}

// Compile-time size check - must be exactly 32 bytes to match the kernel ABI
var _ [32]byte = [unsafe.Sizeof(IOEvent{})]byte{}

// NewIocb returns a descriptor in its default state: a no-op against an
// invalid file descriptor, everything else zero.
func NewIocb() *Iocb {
	return &Iocb{OpCode: IOCmdNoop, FD: -1}
}

// PrepPread readies icb as a positional read of len(buf) bytes into buf at
// offset. buf must stay alive and unmoved until the completion is harvested.
func (icb *Iocb) PrepPread(fd int32, buf []byte, offset int64) {
	icb.FD = fd
	icb.OpCode = IOCmdPread
	icb.Buf = sliceAddr(buf)
	icb.Bytes = uint64(len(buf))
	icb.Offset = offset
}

// PrepPwrite readies icb as a positional write of len(buf) bytes from buf at
// offset.
func (icb *Iocb) PrepPwrite(fd int32, buf []byte, offset int64) {
	icb.FD = fd
	icb.OpCode = IOCmdPwrite
	icb.Buf = sliceAddr(buf)
	icb.Bytes = uint64(len(buf))
	icb.Offset = offset
}

// PrepPreadv readies icb as a vectored read into iovs. Both the iovec array
// and the memory it points to must stay alive until completion.
func (icb *Iocb) PrepPreadv(fd int32, iovs []unix.Iovec, offset int64) {
	icb.FD = fd
	icb.OpCode = IOCmdPreadv
	icb.Buf = uint64(uintptr(unsafe.Pointer(unsafe.SliceData(iovs))))
	icb.Bytes = uint64(len(iovs))
	icb.Offset = offset
}

// PrepPwritev readies icb as a vectored write from iovs.
func (icb *Iocb) PrepPwritev(fd int32, iovs []unix.Iovec, offset int64) {
	icb.FD = fd
	icb.OpCode = IOCmdPwritev
	icb.Buf = uint64(uintptr(unsafe.Pointer(unsafe.SliceData(iovs))))
	icb.Bytes = uint64(len(iovs))
	icb.Offset = offset
}

// PrepFsync readies icb as an fsync of fd.
func (icb *Iocb) PrepFsync(fd int32) {
	icb.FD = fd
	icb.OpCode = IOCmdFsync
	icb.Buf = 0
	icb.Bytes = 0
	icb.Offset = 0
}

// PrepFdsync readies icb as an fdatasync of fd.
func (icb *Iocb) PrepFdsync(fd int32) {
	icb.FD = fd
	icb.OpCode = IOCmdFdsync
	icb.Buf = 0
	icb.Bytes = 0
	icb.Offset = 0
}

// PrepFill readies icb to fill f's whole writable region with a positional
// read. Any Fillable works here; the caller reports the completed range back
// to f with Filled once the event arrives.
func (icb *Iocb) PrepFill(fd int32, f Fillable, offset int64) {
	icb.PrepPread(fd, f.FillView(), offset)
}

// PrepDrain readies icb to write d's valid bytes at offset.
func (icb *Iocb) PrepDrain(fd int32, d Drainable, offset int64) {
	icb.PrepPwrite(fd, d.DrainView(), offset)
}

// SetEventFD routes completion notification for icb to the eventfd fd.
func (icb *Iocb) SetEventFD(fd int32) {
	icb.Flags |= IOCBFlagResfd
	icb.ResFD = fd
}

func sliceAddr(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
}
