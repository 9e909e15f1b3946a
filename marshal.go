package kaio

import "encoding/binary"

// The kernel consumes Iocb and IOEvent by pointer, so nothing on the hot
// path serializes them. These codecs exist to pin the field offsets: the
// tests compare their output against the in-memory layout byte for byte,
// which turns any accidental reordering or padding into a failing test
// instead of silent kernel corruption.

// IocbSize and IOEventSize are the kernel's documented struct sizes.
const (
	IocbSize    = 64
	IOEventSize = 32
)

// MarshalError reports a marshaling failure.
type MarshalError string

func (e MarshalError) Error() string { return string(e) }

const (
	// ErrInsufficientData means the input was shorter than the fixed
	// kernel struct size.
	ErrInsufficientData MarshalError = "kaio: insufficient data for unmarshaling"
)

// MarshalIocb encodes icb in the kernel's little-endian wire layout.
func MarshalIocb(icb *Iocb) []byte {
	buf := make([]byte, IocbSize)

	binary.LittleEndian.PutUint64(buf[0:8], icb.Data)
	binary.LittleEndian.PutUint32(buf[8:12], icb.Key)
	binary.LittleEndian.PutUint32(buf[12:16], icb.Reserved1)
	binary.LittleEndian.PutUint16(buf[16:18], icb.OpCode)
	binary.LittleEndian.PutUint16(buf[18:20], uint16(icb.ReqPrio))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(icb.FD))
	binary.LittleEndian.PutUint64(buf[24:32], icb.Buf)
	binary.LittleEndian.PutUint64(buf[32:40], icb.Bytes)
	binary.LittleEndian.PutUint64(buf[40:48], uint64(icb.Offset))
	binary.LittleEndian.PutUint64(buf[48:56], icb.Reserved2)
	binary.LittleEndian.PutUint32(buf[56:60], icb.Flags)
	binary.LittleEndian.PutUint32(buf[60:64], uint32(icb.ResFD))

	return buf
}

// UnmarshalIocb decodes a kernel-layout iocb from data.
func UnmarshalIocb(data []byte, icb *Iocb) error {
	if len(data) < IocbSize {
		return ErrInsufficientData
	}

	icb.Data = binary.LittleEndian.Uint64(data[0:8])
	icb.Key = binary.LittleEndian.Uint32(data[8:12])
	icb.Reserved1 = binary.LittleEndian.Uint32(data[12:16])
	icb.OpCode = binary.LittleEndian.Uint16(data[16:18])
	icb.ReqPrio = int16(binary.LittleEndian.Uint16(data[18:20]))
	icb.FD = int32(binary.LittleEndian.Uint32(data[20:24]))
	icb.Buf = binary.LittleEndian.Uint64(data[24:32])
	icb.Bytes = binary.LittleEndian.Uint64(data[32:40])
	icb.Offset = int64(binary.LittleEndian.Uint64(data[40:48]))
	icb.Reserved2 = binary.LittleEndian.Uint64(data[48:56])
	icb.Flags = binary.LittleEndian.Uint32(data[56:60])
	icb.ResFD = int32(binary.LittleEndian.Uint32(data[60:64]))

	return nil
}

// MarshalIOEvent encodes ev in the kernel's little-endian wire layout.
func MarshalIOEvent(ev *IOEvent) []byte {
	buf := make([]byte, IOEventSize)

	binary.LittleEndian.PutUint64(buf[0:8], ev.Data)
	binary.LittleEndian.PutUint64(buf[8:16], ev.Obj)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(ev.Res))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(ev.Res2))

	return buf
}

// UnmarshalIOEvent decodes a kernel-layout io_event from data.
func UnmarshalIOEvent(data []byte, ev *IOEvent) error {
	if len(data) < IOEventSize {
		return ErrInsufficientData
	}

	ev.Data = binary.LittleEndian.Uint64(data[0:8])
	ev.Obj = binary.LittleEndian.Uint64(data[8:16])
	ev.Res = int64(binary.LittleEndian.Uint64(data[16:24]))
	ev.Res2 = int64(binary.LittleEndian.Uint64(data[24:32]))

	return nil
}
