package uring

import (
	"unsafe"
)

// PrepareRead stages IORING_OP_READ of len(buf) bytes from fd at the current file position.
// buf must not be moved or reused until the completion is consumed.
func (r *Ring) PrepareRead(fd int32, buf []byte, userData uint64) error {
	return r.Prepare(IORING_OP_READ, fd,
		uint64(uintptr(unsafe.Pointer(&buf[0]))), uint32(len(buf)),
		userData, 0)
}

// PrepareTimeout stages IORING_OP_TIMEOUT that fires after ts. With IORING_TIMEOUT_MULTISHOT
// in flags the kernel keeps firing it every ts without resubmission, ts must stay valid for
// the whole lifetime of the ring in that case.
func (r *Ring) PrepareTimeout(ts *Timespec, userData uint64, flags uint32) error {
	// kernel reads exactly one timespec, off stays 0 so completions don't count towards it
	return r.Prepare(IORING_OP_TIMEOUT, NoFD,
		uint64(uintptr(unsafe.Pointer(ts))), 1,
		userData, flags)
}
